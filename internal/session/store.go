// Package session provides a generic keyed store used for per-player state
// and for browser sessions of the web shell.
package session

import "context"

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// Update applies fn to the current value atomically. ok is false when
	// id has no value yet.
	Update(ctx context.Context, id string, fn func(cur T, ok bool) (T, error)) error
	NewID() string
}
