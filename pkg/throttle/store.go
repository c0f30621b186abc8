// Package throttle implements the request throttling used by the password
// grant: fixed-window counters and an exponential backoff, both kept in a
// shared Store so several instances see the same counters.
package throttle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is the counter backend. Implementations must make Incr atomic.
type Store interface {
	// Incr adds one to the counter at key and returns the new value. A key
	// created by this call expires after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Count returns the counter at key, or 0 when absent.
	Count(ctx context.Context, key string) (int64, error)

	// Expire resets the time to live of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Get returns the value stored with Set.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value at key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// composeKey builds a store key from a prefix and caller-supplied parts.
// Parts are hashed since usernames may hold arbitrary bytes.
func composeKey(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return prefix + ":" + hex.EncodeToString(sum[:16])
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
