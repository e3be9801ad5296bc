// Package store implements the list operations a queue needs from its backing
// store.
package store

import (
	"context"
	"time"
)

// Store wraps the two list operations a queue is built on.
//
// Both operations must be atomic on the store side. A value pushed with
// PushLeft is delivered by BlockingPopRight to exactly one caller, which makes
// several consumers of one key competing consumers rather than subscribers.
type Store interface {
	// PushLeft prepends value to the list at key and returns the new length
	// of the list.
	PushLeft(ctx context.Context, key, value string) (int64, error)

	// BlockingPopRight removes and returns the tail of the list at key as a
	// (key, value) reply. It blocks until a value is available or timeout
	// elapses, in which case a nil reply and a nil error are returned. A zero
	// timeout blocks indefinitely.
	BlockingPopRight(ctx context.Context, key string, timeout time.Duration) ([]string, error)
}
