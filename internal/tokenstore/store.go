// Package tokenstore persists the single session token across restarts.
//
// Every backend stores the raw token string under one fixed key. There is no
// envelope, no versioning and no encryption. An empty value is treated as
// absent by all backends.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// ErrEmptyValue is returned by Set for an empty token.
var ErrEmptyValue = errors.New("tokenstore: empty value")

// Store is durable storage for one named string value.
type Store interface {
	// Get returns the stored value. ok is false when nothing was stored.
	Get(ctx context.Context) (value string, ok bool, err error)
	// Set overwrites the stored value and returns once it is durable.
	Set(ctx context.Context, value string) error
	// Remove deletes the value. Removing an absent value succeeds.
	Remove(ctx context.Context) error
}

// Memory is a process-local Store. It does not survive restarts and exists
// for tests and for running without any configured medium.
type Memory struct {
	mu    sync.Mutex
	value string
}

func (m *Memory) Get(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.value != "", nil
}

func (m *Memory) Set(_ context.Context, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}

func (m *Memory) Remove(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	return nil
}
