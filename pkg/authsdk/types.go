package authsdk

import (
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
)

// SessionCookieName is the cookie carrying the browser session key.
const SessionCookieName = "idp_session"

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// The provider adds the client_id of the authenticated client when known.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`

	// ClientID is set once the client has been identified
	ClientID string `json:"client_id,omitempty"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the token endpoint response.
type TokenResponse struct {
	// AccessToken is the opaque bearer token accepted by the userinfo endpoint
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int64 `json:"expires_in"`

	// IDToken is the signed OpenID Connect ID token
	IDToken string `json:"id_token,omitempty"`

	// RefreshToken is only issued to clients using refresh tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RevokeResponse is the revocation endpoint success body.
type RevokeResponse struct {
	Err int    `json:"err"`
	Msg string `json:"msg"`
}

// UserInfoResponse is the set of claims released by the userinfo endpoint.
// Keys depend on the client claim mappings and the token scopes.
type UserInfoResponse map[string]any

// Sub returns the subject identifier claim.
func (u UserInfoResponse) Sub() string {
	s, _ := u["sub"].(string)
	return s
}

// ============================================================================
// Browser Flow Types
// ============================================================================

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	// ExpiresAt is the session expiry as a unix timestamp
	ExpiresAt int64 `json:"expires_at"`
}

// LoginRequiredResponse is the authorize endpoint answer when the user must
// authenticate first.
type LoginRequiredResponse struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description"`
	Next             string   `json:"next"`
	Nonce            string   `json:"nonce,omitempty"`
	LoginHint        []string `json:"login_hint,omitempty"`
}

// ConsentResponse is the authorize endpoint answer when the user must
// accept the requested scopes. Post the same parameters back with accept
// set to complete it.
type ConsentResponse struct {
	ClientID              string   `json:"client_id"`
	ClientName            string   `json:"client_name"`
	Scopes                []string `json:"scopes"`
	NeedsScopeValidation  bool     `json:"needs_scope_validation"`
	HasSelectableProfiles bool     `json:"has_selectable_profiles"`
	ProfileTypes          []string `json:"profile_types,omitempty"`
}

// FrontchannelLogout is one relying party page to load during logout.
type FrontchannelLogout struct {
	FrontchannelLogoutURI string `json:"frontchannel_logout_uri"`
	FrontchannelTimeout   *int   `json:"frontchannel_timeout"`
	Name                  string `json:"name"`
}

// LogoutResponse is returned by the logout endpoint.
type LogoutResponse struct {
	RedirectURI  string               `json:"redirect_uri,omitempty"`
	Frontchannel []FrontchannelLogout `json:"frontchannel"`
}

// SubjectResponse is returned by the subject lookup API.
type SubjectResponse struct {
	// UUID is the user UUID as 32 hex digits
	UUID string `json:"uuid"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates whether ID token signing keys are loaded
	Signer string `json:"signer"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse contains the JSON Web Key Set published at /idp/oidc/certs.
type JWKSResponse jwtx.JWKS
