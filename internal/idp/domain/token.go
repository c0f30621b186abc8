package domain

import "time"

// CodeChallengeMethod is the PKCE transform recorded on a code.
type CodeChallengeMethod string

const (
	CodeChallengePlain CodeChallengeMethod = "plain"
	CodeChallengeS256  CodeChallengeMethod = "S256"
)

// Code is a single-use authorization code.
type Code struct {
	ID                  string
	CodeHash            string // fingerprint of the value handed to the client
	ClientID            string // Client.ID
	UserID              string
	ProfileID           string
	Scopes              string
	State               *string
	Nonce               *string
	RedirectURI         string
	SessionKey          string
	AuthTime            time.Time
	CodeChallenge       string
	CodeChallengeMethod CodeChallengeMethod
	AuthorizationID     string
	ExpiresAt           time.Time
	UsedAt              *time.Time
	CreatedAt           time.Time
}

func (c Code) ScopeSet() ScopeSet { return ParseScopes(c.Scopes) }

// AccessToken is an opaque bearer token.
type AccessToken struct {
	ID              string
	TokenHash       string // fingerprint of the bearer value
	ClientID        string // Client.ID
	UserID          string
	Scopes          string
	SessionKey      string // empty when not bound to a browser session
	ProfileID       string
	RefreshTokenID  string
	AuthorizationID string
	ExpiresAt       *time.Time // nil means tied to the session
	CreatedAt       time.Time
}

func (t AccessToken) ScopeSet() ScopeSet { return ParseScopes(t.Scopes) }

// RefreshToken is an opaque token exchanged for new access tokens.
type RefreshToken struct {
	ID              string
	TokenHash       string
	ClientID        string // Client.ID
	UserID          string
	Scopes          string
	ProfileID       string
	RefreshTokenID  string // previous token in the rotation chain
	AuthorizationID string
	ExpiresAt       *time.Time
	// Rotations counts successful exchanges of this token.
	Rotations int
	CreatedAt time.Time
}

// IsValid reports whether the token has not reached expiry.
func (t RefreshToken) IsValid(now time.Time) bool {
	return t.ExpiresAt == nil || !t.ExpiresAt.Before(now)
}

// TokenResponse is the token endpoint success body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
