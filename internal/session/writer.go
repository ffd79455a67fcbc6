package session

import "sync"

type opKind int

const (
	opSet opKind = iota
	opRemove
	opBarrier
)

type op struct {
	kind  opKind
	value []byte
	done  chan error
}

// writer applies storage operations one at a time in enqueue order.
type writer struct {
	apply func(op) error

	mu      sync.Mutex
	queue   []op
	closed  bool
	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newWriter(apply func(op) error) *writer {
	w := &writer{
		apply:   apply,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue adds o to the queue and returns a channel that receives the result
// once o has been applied. After stop it reports ErrClosed right away.
func (w *writer) enqueue(o op) <-chan error {
	o.done = make(chan error, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		o.done <- ErrClosed
		return o.done
	}
	w.queue = append(w.queue, o)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return o.done
}

func (w *writer) next() (op, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return op{}, false
	}
	o := w.queue[0]
	w.queue[0] = op{}
	w.queue = w.queue[1:]
	return o, true
}

func (w *writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		o, ok := w.next()
		if !ok {
			return
		}
		var err error
		if o.kind != opBarrier {
			err = w.apply(o)
		}
		o.done <- err
	}
}

// stop rejects new operations, applies what is already queued and waits for
// the writer goroutine to exit.
func (w *writer) stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	})
	<-w.stopped
}
