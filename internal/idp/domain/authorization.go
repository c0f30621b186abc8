package domain

import "time"

// TargetKind names the owner of a persisted consent.
type TargetKind string

const (
	TargetClient TargetKind = "client"
	TargetOU     TargetKind = "ou"
)

// AuthorizationTarget is the client, or the organizational unit, a consent
// was given to.
type AuthorizationTarget struct {
	Kind TargetKind
	ID   string
}

// Authorization is a remembered user consent.
type Authorization struct {
	ID        string
	Target    AuthorizationTarget
	UserID    string
	Scopes    string
	ProfileID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (a Authorization) ScopeSet() ScopeSet { return ParseScopes(a.Scopes) }
