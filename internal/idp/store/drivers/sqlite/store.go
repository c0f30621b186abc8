package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// connPragmas are set through the DSN so the driver applies them to every
// pooled connection, not only the first one.
var connPragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

func NewStore(dsn string) (*Store, error) {
	dsn = withPragmas(dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a distinct database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

// withPragmas appends each connPragmas entry the DSN does not set already.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range connPragmas {
		name, _, _ := strings.Cut(p, "(")
		if strings.Contains(dsn, "_pragma="+name+"(") {
			continue
		}
		dsn += sep + "_pragma=" + p
		sep = "&"
	}
	return dsn
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// RotateRefreshToken runs the whole rotation in one transaction.
func (s *Store) RotateRefreshToken(ctx context.Context, r store.Rotation) error {
	return s.WithTx(ctx, func(tx store.Tx) error {
		return rotate(ctx, tx, r)
	})
}

func rotate(ctx context.Context, st store.Store, r store.Rotation) error {
	// Claim the token first: the loser of a race stops here.
	if err := st.RefreshTokens().ClaimRefreshToken(ctx, r.Used.ID, r.Used.Rotations, r.UsedExpiresAt); err != nil {
		return err
	}
	if err := st.AccessTokens().ExpireAccessTokensByRefreshToken(ctx, r.Used.ID, r.Now); err != nil {
		return err
	}
	if err := st.RefreshTokens().ExpireRefreshTokensByParent(ctx, r.Used.ID, r.Now); err != nil {
		return err
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, r.RefreshToken); err != nil {
		return err
	}
	return st.AccessTokens().CreateAccessToken(ctx, r.AccessToken)
}

func (s *Store) Clients() store.Clients               { return &clientsRepo{q: s.q} }
func (s *Store) Users() store.Users                   { return &usersRepo{q: s.q} }
func (s *Store) Sessions() store.Sessions             { return &sessionsRepo{q: s.q} }
func (s *Store) Codes() store.Codes                   { return &codesRepo{q: s.q} }
func (s *Store) AccessTokens() store.AccessTokens     { return &accessTokensRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{q: s.q} }
func (s *Store) Authorizations() store.Authorizations { return &authorizationsRepo{q: s.q} }
func (s *Store) SigningKeys() store.SigningKeys       { return &signingKeysRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique violations into store.ErrAlreadyExists.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// expectOne maps "no row changed" to store.ErrNotFound.
func expectOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func mapTimeNull(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func mapOptionalTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return mapTimeNull(*t)
}

func mapNullTimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func mapOptionalDuration(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d), Valid: true}
}

func mapNullDurationPtr(n sql.NullInt64) *time.Duration {
	if !n.Valid {
		return nil
	}
	d := time.Duration(n.Int64)
	return &d
}

func mapOptionalInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func mapNullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}

func mapBool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
