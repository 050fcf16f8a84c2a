// Package storage abstracts the durable key-value backend the monitoring
// engine persists into: snapshot keys with expiry, the alert-history list
// and the cooldown/counter keys.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("storage: key not found")

// Store is the backend contract. The production implementation wraps
// Redis; the in-memory implementation backs tests and Redis-less runs.
type Store interface {
	// SetWithExpiry writes value under key; the key disappears after ttl.
	// A ttl of zero means no expiry.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent writes only when key does not already exist and reports
	// whether the write happened. Used as the cooldown gate's atomic
	// check-and-set.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// DeleteMany removes the given keys. Missing keys are not an error.
	DeleteMany(ctx context.Context, keys ...string) error

	// Keys lists all live keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// ListPush prepends value to the list stored at key.
	ListPush(ctx context.Context, key string, value []byte) error

	// ListRange returns elements [start, stop] of the list at key,
	// newest first. Negative indices count from the end, Redis-style.
	ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// Increment atomically adds one to the integer at key and returns
	// the new value.
	Increment(ctx context.Context, key string) (int64, error)
}
