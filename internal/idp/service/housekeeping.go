package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
)

// Sweeper periodically deletes rows that can no longer be used: expired or
// consumed codes, expired tokens, authorizations, sessions and retired
// signing keys past their grace period.
type Sweeper struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper returns a sweeper running every interval (one hour when 0).
func NewSweeper(st store.Store, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a first sweep and then one per interval, in the background.
func (s *Sweeper) Start() {
	go s.run()
	s.Logger.Info("idp sweeper started", "interval", s.Interval)
}

// Stop waits for an in-progress sweep and stops the worker.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("idp sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())
	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes every kind of stale row once. A failing kind is logged and
// does not stop the others. It returns the number of kinds swept.
func (s *Sweeper) Sweep(ctx context.Context) int {
	now := s.now().UTC()
	sweeps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"codes", func(ctx context.Context) error { return s.Store.Codes().DeleteExpiredCodes(ctx, now) }},
		{"access_tokens", func(ctx context.Context) error { return s.Store.AccessTokens().DeleteExpiredAccessTokens(ctx, now) }},
		{"refresh_tokens", func(ctx context.Context) error { return s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now) }},
		{"authorizations", func(ctx context.Context) error { return s.Store.Authorizations().DeleteExpiredAuthorizations(ctx, now) }},
		{"sessions", func(ctx context.Context) error { return s.Store.Sessions().DeleteExpiredSessions(ctx, now) }},
		{"signing_keys", s.Store.SigningKeys().DeleteExpiredSigningKeys},
	}

	var done int
	for _, sw := range sweeps {
		if err := sw.fn(ctx); err != nil {
			s.Logger.Error("sweep failed", "kind", sw.name, "error", err)
			continue
		}
		s.Logger.Debug("swept", "kind", sw.name)
		done++
	}
	s.Logger.Info("idp sweep completed", "successful_sweeps", done)
	return done
}
