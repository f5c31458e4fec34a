// Package kv is the key-value state store the request lifecycle is built on.
//
// Every operation is atomic for the single key it touches; nothing spans keys.
// Two implementations exist: MemoryStore for tests and single-process
// development, RedisStore for deployments.
//
// Error Contract:
//   - Get returns sentinel.ErrNotFound (wrapped) when the key is absent
//   - all other absent-key reads return zero values, never ErrNotFound
//   - infrastructure failures are returned wrapped with the key for context
package kv

import (
	"context"
)

// Store is the per-key atomic contract consumed by the token registry, the
// request record store, and the locality and matching collaborators.
type Store interface {
	// Get returns the string stored at key.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key unconditionally.
	Set(ctx context.Context, key, value string) error
	// SetIfAbsent stores value only if key is absent and reports whether it did.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
	// Incr increments the integer at key (absent counts as 0) and returns the
	// post-increment value.
	Incr(ctx context.Context, key string) (int64, error)
	// Or bitwise-ORs mask into the integer at key and returns the result.
	Or(ctx context.Context, key string, mask int64) (int64, error)
	// Delete removes keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// ListAppend adds value to the list at key unless it is already a member,
	// and reports whether it was added.
	ListAppend(ctx context.Context, key, value string) (bool, error)
	// List returns the members of the list at key, most recent first.
	List(ctx context.Context, key string) ([]string, error)
}

// Locker serializes work on a single logical key across goroutines (memory)
// or processes (Redis).
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The returned func releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (func(), error)
}
