package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
)

// Engine holds what every endpoint shares: configuration, persistence,
// signing keys and the subject and claims engines.
type Engine struct {
	cfg      Config
	Store    store.Store
	Keys     *jwtx.KeyManager
	Sectors  *SectorResolver
	Claims   *ClaimsAssembler
	Observer EventObserver

	// Restriction is consulted at authorization time; nil means none.
	Restriction ViewRestriction

	Passwords *cryptox.PasswordHasher
	Limiter   *PasswordGrantLimiter

	now func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithObserver sets the event observer.
func WithObserver(o EventObserver) Option {
	return func(e *Engine) { e.Observer = o }
}

// WithClaimsHooks registers claims post-processing hooks.
func WithClaimsHooks(hooks ...ClaimsHook) Option {
	return func(e *Engine) { e.Claims.Hooks = append(e.Claims.Hooks, hooks...) }
}

// WithAttributeSource replaces the default user attribute source.
func WithAttributeSource(src AttributeSource) Option {
	return func(e *Engine) { e.Claims.Attributes = src }
}

// WithTemplateRenderer replaces the claim template renderer.
func WithTemplateRenderer(r TemplateRenderer) Option {
	return func(e *Engine) { e.Claims.Renderer = r }
}

// WithViewRestriction installs a post-login restriction check.
func WithViewRestriction(v ViewRestriction) Option {
	return func(e *Engine) { e.Restriction = v }
}

// WithPasswordHasher enables password authentication.
func WithPasswordHasher(h *cryptox.PasswordHasher) Option {
	return func(e *Engine) { e.Passwords = h }
}

// WithPasswordGrantLimiter throttles the password grant.
func WithPasswordGrantLimiter(l *PasswordGrantLimiter) Option {
	return func(e *Engine) { e.Limiter = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(cfg Config, st store.Store, keys *jwtx.KeyManager, opts ...Option) *Engine {
	cfg = cfg.WithDefaults()
	e := &Engine{
		cfg:      cfg,
		Store:    st,
		Keys:     keys,
		Sectors:  NewSectorResolver(st, time.Hour),
		Observer: NopObserver{},
		now:      time.Now,
	}
	e.Claims = &ClaimsAssembler{
		Issuer:          cfg.Issuer,
		ProfileOverride: cfg.ProfileOverrideMapping,
		Subjects:        e,
		Attributes:      NewStoreAttributeSource(st),
		Renderer:        NewGoTemplateRenderer(),
	}
	e.Claims.Mappings = func(ctx context.Context, clientID string) ([]domain.ClaimMapping, error) {
		return st.Clients().ListClaims(ctx, clientID)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Now returns the current time in UTC.
func (e *Engine) Now() time.Time { return e.now().UTC() }

// AllowedScopes is the client allowlist, else the configured defaults, else
// openid, email and profile.
func (e *Engine) AllowedScopes(client domain.Client) domain.ScopeSet {
	if s := client.ScopeSet(); len(s) > 0 {
		return s
	}
	if len(e.cfg.DefaultScopes) > 0 {
		return domain.NewScopeSet(e.cfg.DefaultScopes...)
	}
	return domain.NewScopeSet(FallbackScopes...)
}

// LogError logs a protocol error at INFO for user-driven outcomes and at
// WARN otherwise.
func LogError(ctx context.Context, log *slog.Logger, endpoint string, err *OIDCError) {
	level := slog.LevelWarn
	if !err.ShowMessage {
		level = slog.LevelInfo
	}
	attrs := []any{
		slog.String("endpoint", endpoint),
		slog.String("error", err.Code),
		slog.String("error_description", err.Description),
	}
	if err.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", err.ClientID))
	}
	if err.ExtraInfo != "" {
		attrs = append(attrs, slog.String("extra_info", err.ExtraInfo))
	}
	log.Log(ctx, level, "idp_oidc: protocol error", attrs...)
}
