package throttle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a number of hits allowed per window.
type Rate struct {
	Limit  int64
	Window time.Duration
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// ParseRate parses "<count>/<period>" where period is an optional multiplier
// followed by s, m, h or d ("100/m", "10/5m").
func ParseRate(s string) (Rate, error) {
	count, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("throttle: invalid rate %q", s)
	}
	limit, err := strconv.ParseInt(count, 10, 64)
	if err != nil || limit < 0 {
		return Rate{}, fmt.Errorf("throttle: invalid rate count %q", count)
	}
	if period == "" {
		return Rate{}, fmt.Errorf("throttle: missing rate period in %q", s)
	}

	unit := period[len(period)-1]
	mult := int64(1)
	if len(period) > 1 {
		mult, err = strconv.ParseInt(period[:len(period)-1], 10, 64)
		if err != nil || mult <= 0 {
			return Rate{}, fmt.Errorf("throttle: invalid rate period %q", period)
		}
	}

	var base time.Duration
	switch unit {
	case 's':
		base = time.Second
	case 'm':
		base = time.Minute
	case 'h':
		base = time.Hour
	case 'd':
		base = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("throttle: invalid rate unit %q", string(unit))
	}

	return Rate{Limit: limit, Window: time.Duration(mult) * base}, nil
}

// WindowLimiter counts hits per key in fixed, clock-aligned windows.
type WindowLimiter struct {
	store  Store
	prefix string
	rate   Rate
	now    Clock
}

// NewWindowLimiter returns a limiter storing its counters under prefix.
func NewWindowLimiter(store Store, prefix string, rate Rate) *WindowLimiter {
	return &WindowLimiter{store: store, prefix: prefix, rate: rate, now: time.Now}
}

// Rate returns the configured rate.
func (l *WindowLimiter) Rate() Rate { return l.rate }

// Hit records one hit for key and reports whether the limit is now exceeded.
func (l *WindowLimiter) Hit(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Incr(ctx, l.windowKey(key), l.rate.Window)
	if err != nil {
		return false, err
	}
	return n > l.rate.Limit, nil
}

// Exceeded reports whether key is already over the limit without counting a
// new hit.
func (l *WindowLimiter) Exceeded(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Count(ctx, l.windowKey(key))
	if err != nil {
		return false, err
	}
	return n > l.rate.Limit, nil
}

func (l *WindowLimiter) windowKey(key string) string {
	start := l.now().UTC().Truncate(l.rate.Window).Unix()
	return composeKey(l.prefix, key) + ":" + strconv.FormatInt(start, 10)
}
