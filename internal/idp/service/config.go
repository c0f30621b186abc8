package service

import "time"

// Defaults applied by Config.WithDefaults.
const (
	DefaultAccessTokenDuration  = 30 * time.Second
	DefaultIDTokenDuration      = 30 * time.Second
	DefaultRefreshTokenDuration = 24 * time.Hour
	DefaultRefreshGrace         = 10 * time.Minute
	DefaultCodeTTL              = 30 * time.Second
	DefaultSessionLifetime      = 14 * 24 * time.Hour
	DefaultRedirectURIMaxLength = 1024
	DefaultAuthorizationDays    = 365
)

// FallbackScopes are allowed when neither the client nor the configuration
// names any.
var FallbackScopes = []string{"openid", "email", "profile"}

// Config is the immutable provider configuration shared by every engine.
type Config struct {
	// Issuer is the iss claim and the iss redirect parameter.
	Issuer string

	// SecretKey keys pairwise subjects and session ids. Changing it changes
	// every pairwise sub.
	SecretKey []byte

	// DefaultScopes are allowed for clients without a scope allowlist.
	DefaultScopes []string

	// AccessTokenDuration is the password grant fallback lifetime.
	AccessTokenDuration  time.Duration
	IDTokenDuration      time.Duration
	RefreshTokenDuration time.Duration
	RefreshGrace         time.Duration
	CodeTTL              time.Duration
	SessionLifetime      time.Duration

	RedirectURIMaxLength int

	// ProfileOverrideMapping maps a profile attribute (email, identifier)
	// to the claim it replaces when both are set.
	ProfileOverrideMapping map[string]string
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.AccessTokenDuration <= 0 {
		c.AccessTokenDuration = DefaultAccessTokenDuration
	}
	if c.IDTokenDuration <= 0 {
		c.IDTokenDuration = DefaultIDTokenDuration
	}
	if c.RefreshTokenDuration <= 0 {
		c.RefreshTokenDuration = DefaultRefreshTokenDuration
	}
	if c.RefreshGrace <= 0 {
		c.RefreshGrace = DefaultRefreshGrace
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = DefaultCodeTTL
	}
	if c.SessionLifetime <= 0 {
		c.SessionLifetime = DefaultSessionLifetime
	}
	if c.RedirectURIMaxLength <= 0 {
		c.RedirectURIMaxLength = DefaultRedirectURIMaxLength
	}
	if c.ProfileOverrideMapping == nil {
		c.ProfileOverrideMapping = map[string]string{"email": "email"}
	}
	return c
}
