package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// Limit is a token bucket refilled with Requests tokens per Window and
// holding at most Burst of them.
type Limit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

func (l Limit) every() rate.Limit {
	if l.Requests <= 0 || l.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// Limits groups the route profiles.
type Limits struct {
	// Strict guards credential endpoints (login).
	Strict Limit
	// Moderate guards client-authenticated endpoints (token, revoke, API).
	Moderate Limit
	// Lenient guards browser and monitoring endpoints.
	Lenient Limit
	// Public guards cacheable documents such as the JWKS.
	Public Limit
}

// DefaultLimits returns 5, 20, 100 and 1000 requests per minute.
func DefaultLimits() Limits {
	perMinute := func(n int) Limit { return Limit{Requests: n, Window: time.Minute, Burst: n} }
	return Limits{
		Strict:   perMinute(5),
		Moderate: perMinute(20),
		Lenient:  perMinute(100),
		Public:   perMinute(1000),
	}
}

// LimitsFromEnv overrides DefaultLimits with RATELIMIT_<PROFILE>_REQUESTS,
// RATELIMIT_<PROFILE>_WINDOW_SEC and RATELIMIT_<PROFILE>_BURST. Invalid or
// non-positive values are ignored.
func LimitsFromEnv(lookup func(string) (string, bool)) Limits {
	l := DefaultLimits()
	override := func(profile string, lim *Limit) {
		positive := func(field string) (int, bool) {
			v, ok := lookup("RATELIMIT_" + profile + "_" + field)
			if !ok {
				return 0, false
			}
			n, err := strconv.Atoi(v)
			return n, err == nil && n > 0
		}
		if n, ok := positive("REQUESTS"); ok {
			lim.Requests = n
		}
		if n, ok := positive("WINDOW_SEC"); ok {
			lim.Window = time.Duration(n) * time.Second
		}
		if n, ok := positive("BURST"); ok {
			lim.Burst = n
		}
	}
	override("STRICT", &l.Strict)
	override("MODERATE", &l.Moderate)
	override("LENIENT", &l.Lenient)
	override("PUBLIC", &l.Public)
	return l
}

// RouteLimiter keeps one token bucket per key. Buckets idle for longer than
// a full refill are evicted.
type RouteLimiter struct {
	limit   Limit
	key     KeyFunc
	buckets *cache.Cache

	// OnReject, when set, is called for every refused request.
	OnReject func(r *http.Request, key string)
}

func NewRouteLimiter(limit Limit, key KeyFunc) *RouteLimiter {
	idle := max(limit.Window, time.Minute)
	return &RouteLimiter{
		limit:   limit,
		key:     key,
		buckets: cache.New(idle, 2*idle),
	}
}

func (rl *RouteLimiter) bucket(key string) *rate.Limiter {
	if v, ok := rl.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		rl.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rl.limit.every(), rl.limit.Burst)
	if err := rl.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost the race to another request for the same key
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow consumes a token for key and reports how long to wait when none
// is left.
func (rl *RouteLimiter) Allow(key string, now time.Time) (bool, time.Duration) {
	lim := rl.bucket(key)
	if lim.AllowN(now, 1) {
		return true, 0
	}
	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// Middleware refuses requests over the limit with 429 and a Retry-After
// header.
func (rl *RouteLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.key(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, delay := rl.Allow(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Requests))
			w.Header().Set("X-RateLimit-Window", rl.limit.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			if rl.OnReject != nil {
				rl.OnReject(r, key)
			}
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// RateLimit is shorthand for NewRouteLimiter(limit, key).Middleware().
func RateLimit(limit Limit, key KeyFunc) Middleware {
	return NewRouteLimiter(limit, key).Middleware()
}
