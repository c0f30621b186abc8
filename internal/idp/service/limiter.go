package service

import (
	"context"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/throttle"
)

// PasswordGrantLimiter throttles the resource owner password grant. IP and
// Client count requests in fixed windows; Backoff slows down repeated bad
// passwords per (username, client).
//
// A nil limiter, or a nil member, does not limit.
type PasswordGrantLimiter struct {
	IP      *throttle.WindowLimiter
	Client  *throttle.WindowLimiter
	Backoff *throttle.Backoff
}

// NewPasswordGrantLimiter builds the limiter over one counter store.
func NewPasswordGrantLimiter(st throttle.Store, rate throttle.Rate, backoff throttle.BackoffOptions) *PasswordGrantLimiter {
	if backoff.Prefix == "" {
		backoff.Prefix = "idp-oidc-ro-cred-grant"
	}
	return &PasswordGrantLimiter{
		IP:      throttle.NewWindowLimiter(st, "ro-cred-grant:ip", rate),
		Client:  throttle.NewWindowLimiter(st, "ro-cred-grant:client", rate),
		Backoff: throttle.NewBackoff(st, backoff),
	}
}

func (l *PasswordGrantLimiter) ipExceeded(ctx context.Context, ip string) (bool, error) {
	if l == nil || l.IP == nil || ip == "" {
		return false, nil
	}
	return l.IP.Exceeded(ctx, ip)
}

func (l *PasswordGrantLimiter) hitIP(ctx context.Context, ip string) (bool, error) {
	if l == nil || l.IP == nil || ip == "" {
		return false, nil
	}
	return l.IP.Hit(ctx, ip)
}

func (l *PasswordGrantLimiter) hitClient(ctx context.Context, clientID string) (bool, error) {
	if l == nil || l.Client == nil {
		return false, nil
	}
	return l.Client.Hit(ctx, clientID)
}

func (l *PasswordGrantLimiter) clientRate() string {
	if l == nil || l.Client == nil {
		return ""
	}
	return l.Client.Rate().String()
}

func (l *PasswordGrantLimiter) wait(ctx context.Context, keys ...string) (float64, error) {
	if l == nil || l.Backoff == nil {
		return 0, nil
	}
	d, err := l.Backoff.Wait(ctx, keys...)
	return d.Seconds(), err
}

func (l *PasswordGrantLimiter) failure(ctx context.Context, keys ...string) error {
	if l == nil || l.Backoff == nil {
		return nil
	}
	_, err := l.Backoff.Failure(ctx, keys...)
	return err
}

func (l *PasswordGrantLimiter) success(ctx context.Context, keys ...string) error {
	if l == nil || l.Backoff == nil {
		return nil
	}
	return l.Backoff.Success(ctx, keys...)
}
