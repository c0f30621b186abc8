package domain

import (
	"strings"
	"time"
)

// IdentifierPolicy selects how the sub claim is computed for a client.
type IdentifierPolicy int

const (
	PolicyUUID               IdentifierPolicy = 1
	PolicyPairwise           IdentifierPolicy = 2
	PolicyEmail              IdentifierPolicy = 3
	PolicyPairwiseReversible IdentifierPolicy = 4
)

func (p IdentifierPolicy) String() string {
	switch p {
	case PolicyUUID:
		return "uuid"
	case PolicyPairwise:
		return "pairwise"
	case PolicyEmail:
		return "email"
	case PolicyPairwiseReversible:
		return "pairwise-reversible"
	}
	return "unknown"
}

// IsPairwise reports whether subs depend on the client's sector.
func (p IdentifierPolicy) IsPairwise() bool {
	return p == PolicyPairwise || p == PolicyPairwiseReversible
}

// IDTokenAlgo selects the ID token signature.
type IDTokenAlgo int

const (
	AlgoRSA  IDTokenAlgo = 1
	AlgoHMAC IDTokenAlgo = 2
	AlgoEC   IDTokenAlgo = 3
)

// AuthorizationFlow is the single OAuth2 flow a client may use.
type AuthorizationFlow int

const (
	FlowAuthorizationCode AuthorizationFlow = 1
	FlowImplicit          AuthorizationFlow = 2
	FlowResourceOwnerCred AuthorizationFlow = 3
)

// AuthorizationMode decides where user consents are recorded.
type AuthorizationMode int

const (
	AuthorizationByService AuthorizationMode = 1
	AuthorizationByOU      AuthorizationMode = 2
	AuthorizationNone      AuthorizationMode = 3
)

// Client is a registered relying party.
type Client struct {
	ID       string // row id (ULID)
	ClientID string // public registration identifier
	Secret   string
	Name     string
	OUID     string

	RedirectURIs           string // whitespace separated patterns
	PostLogoutRedirectURIs string
	SectorIdentifierURI    string
	FrontchannelLogoutURI  string
	FrontchannelTimeout    *int

	IdentifierPolicy  IdentifierPolicy
	IDTokenAlgo       IDTokenAlgo
	AuthorizationFlow AuthorizationFlow
	AuthorizationMode AuthorizationMode

	AlwaysSaveAuthorization      bool
	AuthorizationDefaultDuration int // days, 0 means one year

	IDTokenDuration     *time.Duration // nil means the server default
	AccessTokenDuration *time.Duration // nil means the browser session lifetime

	Scope                string // whitespace separated allowlist
	HasAPIAccess         bool
	ActivateUserProfiles bool
	PKCECodeChallenge    bool
	UsesRefreshTokens    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RedirectURIList returns the registered redirect URI patterns.
func (c Client) RedirectURIList() []string { return strings.Fields(c.RedirectURIs) }

// PostLogoutRedirectURIList returns the registered post-logout URI patterns.
func (c Client) PostLogoutRedirectURIList() []string { return strings.Fields(c.PostLogoutRedirectURIs) }

// ScopeSet returns the client scope allowlist.
func (c Client) ScopeSet() ScopeSet { return ParseScopes(c.Scope) }

// AuthorizationTarget returns the owner of consents given to this client.
func (c Client) AuthorizationTarget() AuthorizationTarget {
	if c.AuthorizationMode == AuthorizationByOU {
		return AuthorizationTarget{Kind: TargetOU, ID: c.OUID}
	}
	return AuthorizationTarget{Kind: TargetClient, ID: c.ID}
}

// ClaimMapping maps a source attribute or template to a claim.
type ClaimMapping struct {
	ID       string
	ClientID string
	Name     string
	Value    string // attribute key, or a template when it contains "{{"
	Scopes   string // comma separated gating scopes
}

// ScopeList returns the gating scopes.
func (m ClaimMapping) ScopeList() []string {
	parts := strings.Split(m.Scopes, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsTemplate reports whether Value must be rendered rather than looked up.
func (m ClaimMapping) IsTemplate() bool {
	return strings.Contains(m.Value, "{{") || strings.Contains(m.Value, "{%")
}
