// Package kv defines the persistent counter store the quota tracker runs on.
//
// The interface separates "key absent" from "backend failure": Get reports
// absence through its found flag and reserves the error return for store
// faults, so callers can pick a fail-open or fail-closed policy explicitly.
package kv

import (
	"context"
	"fmt"
	"time"
)

// Store is the persistence seam for quota counters.
//
// Implementations must anchor expiry to the first write: Increment applies
// ttl only when it creates the key, never when it bumps an existing counter.
type Store interface {
	// Get returns the stored value. found is false when the key is absent
	// or expired; err reports backend failures only.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key with the given ttl. A ttl <= 0 stores
	// without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment adds one to the counter at key and returns the new count,
	// creating it at 1 with ttl when the key is absent or expired.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Key derives the storage key for a (policy, subject) pair.
func Key(namespace, policy, subject string) string {
	if namespace == "" {
		namespace = "quota"
	}
	return fmt.Sprintf("%s:%s:%s", namespace, policy, subject)
}
