package clienttest

import (
	"context"
	"sync"
)

// Flags is an in-memory store.Flags. ReadErr makes every Flag call fail.
type Flags struct {
	ReadErr  error
	WriteErr error

	mu     sync.Mutex
	values map[string]bool
}

func NewFlags() *Flags {
	return &Flags{values: make(map[string]bool)}
}

func (f *Flags) Flag(_ context.Context, key string) (bool, error) {
	if f.ReadErr != nil {
		return false, f.ReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *Flags) SetFlag(_ context.Context, key string, value bool) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *Flags) ClearFlag(_ context.Context, key string) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

// Peek returns a flag ignoring ReadErr.
func (f *Flags) Peek(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}
