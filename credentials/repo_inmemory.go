package credentials

import (
	"context"
	"sync"

	"github.com/jrsteele09/gym-dashboard/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a process-local Repo used by tests and the "memory" store backend
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[Key]string
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		values: make(map[Key]string),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, key Key) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrNotFound, "credential %q", key)
	}
	return value, nil
}

func (r *InMemoryRepo) Set(_ context.Context, key Key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

func (r *InMemoryRepo) Remove(_ context.Context, keys ...Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

func (r *InMemoryRepo) Save(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, value := range entry.Fields() {
		r.values[key] = value
	}
	return nil
}

func (r *InMemoryRepo) Replace(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values = entry.Fields()
	return nil
}

func (r *InMemoryRepo) Load(_ context.Context) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return EntryFromFields(r.values), nil
}

// Len reports how many keys are currently stored.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}
