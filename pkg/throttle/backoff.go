package throttle

import (
	"context"
	"math"
	"strconv"
	"time"
)

// Backoff defaults.
const (
	DefaultBackoffDuration = time.Second
	DefaultBackoffFactor   = 1.8
	DefaultBackoffMax      = time.Hour
)

// Backoff tracks consecutive failures per key. After the n-th failure the key
// must wait min(Duration * Factor^(n-1), Max) before the next attempt.
type Backoff struct {
	store    Store
	prefix   string
	duration time.Duration
	factor   float64
	max      time.Duration
	now      Clock
}

// BackoffOptions configures a Backoff. Zero values take the defaults.
type BackoffOptions struct {
	Prefix   string
	Duration time.Duration
	Factor   float64
	Max      time.Duration
}

// NewBackoff returns a Backoff storing its state in store.
func NewBackoff(store Store, opts BackoffOptions) *Backoff {
	b := &Backoff{
		store:    store,
		prefix:   opts.Prefix,
		duration: opts.Duration,
		factor:   opts.Factor,
		max:      opts.Max,
		now:      time.Now,
	}
	if b.prefix == "" {
		b.prefix = "backoff"
	}
	if b.duration <= 0 {
		b.duration = DefaultBackoffDuration
	}
	if b.factor < 1 {
		b.factor = DefaultBackoffFactor
	}
	if b.max <= 0 {
		b.max = DefaultBackoffMax
	}
	return b
}

// Delay returns the wait imposed after the n-th consecutive failure.
func (b *Backoff) Delay(n int64) time.Duration {
	if n <= 0 {
		return 0
	}
	d := float64(b.duration) * math.Pow(b.factor, float64(n-1))
	if d >= float64(b.max) || math.IsInf(d, 0) {
		return b.max
	}
	return time.Duration(d)
}

// Wait returns how long the caller must still wait, capped at Max.
func (b *Backoff) Wait(ctx context.Context, keys ...string) (time.Duration, error) {
	raw, ok, err := b.store.Get(ctx, b.nextKey(keys))
	if err != nil || !ok {
		return 0, err
	}
	next, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, nil
	}
	wait := time.Unix(0, next).Sub(b.now())
	if wait <= 0 {
		return 0, nil
	}
	return min(wait, b.max), nil
}

// Failure records a failure and returns the wait it imposes.
func (b *Backoff) Failure(ctx context.Context, keys ...string) (time.Duration, error) {
	// State outlives the longest possible wait so the count keeps growing
	// while failures continue.
	ttl := 2 * b.max

	countKey := b.countKey(keys)
	n, err := b.store.Incr(ctx, countKey, ttl)
	if err != nil {
		return 0, err
	}
	if err := b.store.Expire(ctx, countKey, ttl); err != nil {
		return 0, err
	}

	delay := b.Delay(n)
	next := b.now().Add(delay).UnixNano()
	if err := b.store.Set(ctx, b.nextKey(keys), []byte(strconv.FormatInt(next, 10)), ttl); err != nil {
		return 0, err
	}
	return delay, nil
}

// Success clears the failure history of keys.
func (b *Backoff) Success(ctx context.Context, keys ...string) error {
	return b.store.Delete(ctx, b.countKey(keys), b.nextKey(keys))
}

func (b *Backoff) countKey(keys []string) string { return composeKey(b.prefix, keys...) + ":n" }
func (b *Backoff) nextKey(keys []string) string  { return composeKey(b.prefix, keys...) + ":next" }
