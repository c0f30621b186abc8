package store

import (
	"context"
	"errors"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict reports a lost compare-and-swap: the row changed since it
	// was read.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so a Tx can hand out the same repositories bound to one
// transaction.
type Store interface {
	Clients() Clients
	Users() Users
	Sessions() Sessions
	Codes() Codes
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens
	Authorizations() Authorizations
	SigningKeys() SigningKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when it returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// RotateRefreshToken applies a refresh rotation atomically.
	RotateRefreshToken(ctx context.Context, r Rotation) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Rotation describes one use of a refresh token.
type Rotation struct {
	// Used is the refresh token as read before rotating. Its rotation count
	// is the compare value: a concurrent rotation that already claimed it
	// makes this one fail with ErrConflict.
	Used domain.RefreshToken

	AccessToken  domain.AccessToken
	RefreshToken domain.RefreshToken

	Now           time.Time
	UsedExpiresAt time.Time
}

type Clients interface {
	GetClientByID(ctx context.Context, id string) (domain.Client, error)
	GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)

	// ListClientsByPostLogoutURI returns clients whose post-logout patterns
	// contain fragment as a substring.
	ListClientsByPostLogoutURI(ctx context.Context, fragment string) ([]domain.Client, error)

	// UpsertClient inserts the client or updates the row with the same client_id.
	UpsertClient(ctx context.Context, c domain.Client) error
	DeleteClient(ctx context.Context, clientID string) error

	ListClaims(ctx context.Context, clientID string) ([]domain.ClaimMapping, error)
	// ReplaceClaims swaps the whole claim set of a client.
	ReplaceClaims(ctx context.Context, clientID string, claims []domain.ClaimMapping) error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUUID(ctx context.Context, u string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername looks the username up, restricted to ouID when set.
	GetUserByUsername(ctx context.Context, username, ouID string) (domain.User, error)

	UpsertUser(ctx context.Context, u domain.User) error

	GetProfile(ctx context.Context, userID, profileID string) (domain.Profile, error)
	ListProfiles(ctx context.Context, userID string) ([]domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) error

	GetOUByID(ctx context.Context, id string) (domain.OrganizationalUnit, error)
	GetOUBySlug(ctx context.Context, slug string) (domain.OrganizationalUnit, error)
	UpsertOU(ctx context.Context, ou domain.OrganizationalUnit) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns the session unless it expired at now.
	GetSession(ctx context.Context, key string, now time.Time) (domain.Session, error)

	UpdateOIDCSessions(ctx context.Context, key string, entries map[string]domain.FrontchannelEntry) error
	DeleteSession(ctx context.Context, key string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type Codes interface {
	CreateCode(ctx context.Context, c domain.Code) error

	// GetCode returns an unused code whose expiry is not before now.
	GetCodeByHash(ctx context.Context, hash string, now time.Time) (domain.Code, error)

	// ConsumeCode marks the code used. It returns ErrNotFound when the code
	// was already used or expired, so only one caller can succeed.
	ConsumeCode(ctx context.Context, id string, now time.Time) error

	DeleteExpiredCodes(ctx context.Context, now time.Time) error
}

type AccessTokens interface {
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)

	// ExpireAccessToken sets the expiry of the client's token to at.
	ExpireAccessToken(ctx context.Context, hash, clientID string, at time.Time) error

	// ExpireAccessTokensByRefreshToken expires every token minted from refreshID.
	ExpireAccessTokensByRefreshToken(ctx context.Context, refreshID string, at time.Time) error

	DeleteExpiredAccessTokens(ctx context.Context, now time.Time) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash, clientID string) (domain.RefreshToken, error)
	ExpireRefreshToken(ctx context.Context, hash, clientID string, at time.Time) error

	// ExpireRefreshTokensByParent expires every token whose previous link is parentID.
	ExpireRefreshTokensByParent(ctx context.Context, parentID string, at time.Time) error

	// ClaimRefreshToken bumps the rotation count of id from rotations and sets
	// its expiry. It returns ErrConflict when the count already moved.
	ClaimRefreshToken(ctx context.Context, id string, rotations int, expiresAt time.Time) error

	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error
}

type Authorizations interface {
	CreateAuthorization(ctx context.Context, a domain.Authorization) error

	// ListAuthorizations returns the user's consents for target, including
	// expired ones.
	ListAuthorizations(ctx context.Context, target domain.AuthorizationTarget, userID string) ([]domain.Authorization, error)

	DeleteAuthorizations(ctx context.Context, ids ...string) error
	DeleteUserAuthorizations(ctx context.Context, target domain.AuthorizationTarget, userID string) error
	DeleteExpiredAuthorizations(ctx context.Context, now time.Time) error
}

type SigningKeys interface {
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error
	GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListActiveSigningKeys returns non-retired, non-expired keys, newest first.
	ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// ListPublishedSigningKeys returns every non-expired key, newest first.
	ListPublishedSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	RetireSigningKey(ctx context.Context, kid string) error
	DeleteExpiredSigningKeys(ctx context.Context) error
}
