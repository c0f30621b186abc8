package sqlite

import (
	"context"
	"database/sql"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  gen.New(tx),
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

// RotateRefreshToken joins the surrounding transaction.
func (t *txStore) RotateRefreshToken(ctx context.Context, r store.Rotation) error {
	return rotate(ctx, t, r)
}

func (t *txStore) Clients() store.Clients               { return &clientsRepo{q: t.q} }
func (t *txStore) Users() store.Users                   { return &usersRepo{q: t.q} }
func (t *txStore) Sessions() store.Sessions             { return &sessionsRepo{q: t.q} }
func (t *txStore) Codes() store.Codes                   { return &codesRepo{q: t.q} }
func (t *txStore) AccessTokens() store.AccessTokens     { return &accessTokensRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{q: t.q} }
func (t *txStore) Authorizations() store.Authorizations { return &authorizationsRepo{q: t.q} }
func (t *txStore) SigningKeys() store.SigningKeys       { return &signingKeysRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
