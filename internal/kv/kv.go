// Package kv is the flat key-value persistence the launcher state lives in.
// Keys are the historical storage key names, values are opaque bytes
// (JSON for everything the current schema writes).
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrLocked is returned by Lock when another holder owns the lock.
	ErrLocked = errors.New("lock held by another process")
)

type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Backend() string
	Close() error
}

// Lease is a lock obtained from Locker. A nil Lease is a no-op.
type Lease struct {
	refresh func(ctx context.Context) error
	release func(ctx context.Context) error
}

// Refresh pushes the expiry one ttl into the future. It returns ErrLocked
// when the lease expired and another holder took the lock.
func (l *Lease) Refresh(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.refresh(ctx)
}

// Release frees the lock if it is still ours.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.release(ctx)
}

// Locker is implemented by stores that can hold a short-lived exclusive lock
// shared by every process using the same storage.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (*Lease, error)
}

// Exists reports whether key is present.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
