package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verinova/onboarding/internal/authclient"
	"github.com/verinova/onboarding/internal/logging"
	"github.com/verinova/onboarding/internal/profile"
	"github.com/verinova/onboarding/internal/storage"
)

// storageKey is owned by Store; nothing else reads or writes it.
const storageKey = "userData"

const (
	defaultRequestTimeout = 15 * time.Second
	defaultStorageTimeout = 5 * time.Second
)

var (
	// ErrValidation is returned before any network call when input is unusable.
	ErrValidation = errors.New("invalid input")
	// ErrClosed is returned by Flush once the store has been closed.
	ErrClosed = errors.New("session store closed")
)

// AuthClient is the remote API the store signs up and logs in against.
type AuthClient interface {
	Signup(ctx context.Context, p profile.UserProfile, idempotencyKey string) error
	Login(ctx context.Context, mobile, mpin string) (profile.Patch, error)
}

// Store owns the single live UserProfile of the process. Reads and merges are
// applied in memory immediately; persistence runs on one background writer
// that applies writes in the order the merges happened.
type Store struct {
	storage        storage.Store
	auth           AuthClient
	logger         *slog.Logger
	requestTimeout time.Duration
	storageTimeout time.Duration

	mu            sync.RWMutex
	profile       profile.UserProfile
	authenticated bool
	loading       bool
	// signupKey is reused by Signup retries until the server answers or
	// the profile changes.
	signupKey string

	initOnce sync.Once
	ready    chan struct{}

	w *writer
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the sink for background failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestTimeout bounds Signup and Login.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithStorageTimeout bounds each persisted read, write and delete.
func WithStorageTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.storageTimeout = d
		}
	}
}

// New builds a store in the loading state. Call Initialize once to hydrate it
// and Close when done to flush pending writes.
func New(store storage.Store, auth AuthClient, opts ...Option) *Store {
	s := &Store{
		storage:        store,
		auth:           auth,
		logger:         logging.Discard(),
		requestTimeout: defaultRequestTimeout,
		storageTimeout: defaultStorageTimeout,
		profile:        profile.Default(),
		loading:        true,
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.w = newWriter(s.apply)
	return s
}

// Initialize hydrates the profile from persisted storage. Only the first call
// does any work. A missing or unreadable entry leaves the default profile and
// is only logged. Loading is false once Initialize returns.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer func() {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			close(s.ready)
		}()

		ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
		defer cancel()

		data, err := s.storage.Get(ctx, storageKey)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Error("load user data failed", slog.Any("error", err))
			}
			return
		}

		loaded := profile.Default()
		if err := json.Unmarshal(data, &loaded); err != nil {
			s.logger.Error("decode user data failed", slog.Any("error", err))
			return
		}

		s.mu.Lock()
		s.profile = loaded
		s.mu.Unlock()
		s.logger.Debug("user data restored", slog.String("mobile", profile.MaskMobile(loaded.Mobile)))
	})
}

// Ready is closed when the initial load has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Loading reports whether the initial load is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Profile returns a snapshot of the current profile.
func (s *Store) Profile() profile.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Authenticated is true between a successful Login and the next Logout. A
// profile restored from storage is not authenticated on its own.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// UpdateProfile merges patch into the profile. The new value is visible to
// Profile immediately; the write to storage happens in the background and a
// failure there is logged without rolling the merge back.
func (s *Store) UpdateProfile(patch profile.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = patch.Apply(s.profile)
	s.signupKey = ""
	s.persistLocked()
}

// Signup sends the current profile to the API. The profile is not changed
// by the response. A retry after a transport failure or timeout reuses the
// previous idempotency key, so the server replays its first answer instead of
// registering the account twice.
func (s *Store) Signup(ctx context.Context) error {
	s.mu.Lock()
	if s.signupKey == "" {
		s.signupKey = uuid.NewString()
	}
	snapshot, key := s.profile, s.signupKey
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	err := s.auth.Signup(ctx, snapshot, key)
	if err == nil || errors.Is(err, authclient.ErrRejected) || errors.Is(err, authclient.ErrProtocol) {
		s.mu.Lock()
		if s.signupKey == key {
			s.signupKey = ""
		}
		s.mu.Unlock()
	}
	if err != nil {
		s.logger.Warn("signup failed", slog.String("mobile", profile.MaskMobile(snapshot.Mobile)), slog.Any("error", err))
		return err
	}
	s.logger.Info("signup completed", slog.String("mobile", profile.MaskMobile(snapshot.Mobile)))
	return nil
}

// Login authenticates against the API. On success the returned user is merged
// into the profile when it belongs to the same mobile number, and replaces it
// otherwise; the session becomes authenticated and the result is persisted.
// On any failure nothing changes.
func (s *Store) Login(ctx context.Context, mobile, mpin string) error {
	if err := validateCredentials(mobile, mpin); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	patch, err := s.auth.Login(ctx, mobile, mpin)
	if err != nil {
		s.logger.Warn("login failed", slog.String("mobile", profile.MaskMobile(mobile)), slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	base := s.profile
	if base.Mobile == "" || base.Mobile != strings.TrimSpace(mobile) {
		base = profile.Default()
	}
	s.profile = patch.Apply(base)
	s.authenticated = true
	s.signupKey = ""
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("login succeeded", slog.String("mobile", profile.MaskMobile(mobile)))
	return nil
}

// Unlock logs in with the mobile number of the stored profile.
func (s *Store) Unlock(ctx context.Context, mpin string) error {
	mobile := s.Profile().Mobile
	if mobile == "" {
		return fmt.Errorf("%w: no stored mobile number, log in first", ErrValidation)
	}
	return s.Login(ctx, mobile, mpin)
}

// Logout resets the profile and deletes the persisted copy. It returns once
// the delete has been attempted or ctx is done.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.profile = profile.Default()
	s.authenticated = false
	s.signupKey = ""
	done := s.w.enqueue(op{kind: opRemove})
	s.mu.Unlock()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("clear user data failed", slog.Any("error", err))
		}
	case <-ctx.Done():
		s.logger.Warn("logout returned before storage was cleared", slog.Any("error", ctx.Err()))
	}
}

// Flush waits until every write queued so far has been applied.
func (s *Store) Flush(ctx context.Context) error {
	done := s.w.enqueue(op{kind: opBarrier})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and stops the background writer.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.w.stop()
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

// persistLocked queues the current profile. Callers hold s.mu so the queue
// order matches the order of in-memory changes.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.profile)
	if err != nil {
		s.logger.Error("encode user data failed", slog.Any("error", err))
		return
	}
	done := s.w.enqueue(op{kind: opSet, value: data})
	select {
	case err := <-done:
		if errors.Is(err, ErrClosed) {
			s.logger.Warn("user data not saved, store is closed")
		}
	default:
	}
}

func (s *Store) apply(o op) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.storageTimeout)
	defer cancel()

	var err error
	switch o.kind {
	case opSet:
		err = s.storage.Set(ctx, storageKey, o.value)
		if err != nil {
			s.logger.Error("save user data failed", slog.Any("error", err))
		}
	case opRemove:
		err = s.storage.Remove(ctx, storageKey)
	}
	return err
}
