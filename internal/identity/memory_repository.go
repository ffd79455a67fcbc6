package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.Mobile]; exists {
		return ErrAccountExists
	}
	r.accounts[a.Mobile] = a
	return nil
}

func (r *memoryRepository) FindByMobile(_ context.Context, mobile string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[mobile]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (r *memoryRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mobile, a := range r.accounts {
		if a.ID == id {
			at := at.UTC()
			a.LastLogin = &at
			r.accounts[mobile] = a
			return nil
		}
	}
	return ErrAccountNotFound
}
