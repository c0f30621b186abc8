package sqlite

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	return mapConstraint(r.q.CreateRefreshToken(ctx, gen.CreateRefreshTokenParams{
		ID:              t.ID,
		TokenHash:       t.TokenHash,
		ClientID:        t.ClientID,
		UserID:          t.UserID,
		Scopes:          t.Scopes,
		ProfileID:       mapStringNull(t.ProfileID),
		RefreshTokenID:  mapStringNull(t.RefreshTokenID),
		AuthorizationID: mapStringNull(t.AuthorizationID),
		ExpiresAt:       mapOptionalTime(t.ExpiresAt),
		CreatedAt:       nanos(t.CreatedAt),
	}))
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash, clientID string) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, gen.GetRefreshTokenByHashParams{
		TokenHash: hash,
		ClientID:  clientID,
	})
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) ExpireRefreshToken(ctx context.Context, hash, clientID string, at time.Time) error {
	return expectOne(r.q.ExpireRefreshToken(ctx, gen.ExpireRefreshTokenParams{
		ExpiresAt: mapTimeNull(at),
		TokenHash: hash,
		ClientID:  clientID,
	}))
}

func (r *refreshTokensRepo) ExpireRefreshTokensByParent(ctx context.Context, parentID string, at time.Time) error {
	return r.q.ExpireRefreshTokensByParent(ctx, gen.ExpireRefreshTokensByParentParams{
		ExpiresAt:      mapTimeNull(at),
		RefreshTokenID: mapStringNull(parentID),
	})
}

func (r *refreshTokensRepo) ClaimRefreshToken(ctx context.Context, id string, rotations int, expiresAt time.Time) error {
	err := expectOne(r.q.ClaimRefreshToken(ctx, gen.ClaimRefreshTokenParams{
		ExpiresAt: mapTimeNull(expiresAt),
		ID:        id,
		Rotations: int64(rotations),
	}))
	if err == store.ErrNotFound {
		return store.ErrConflict
	}
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error {
	return r.q.DeleteExpiredRefreshTokens(ctx, nanos(now))
}

func mapRefreshToken(row gen.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		ID:              row.ID,
		TokenHash:       row.TokenHash,
		ClientID:        row.ClientID,
		UserID:          row.UserID,
		Scopes:          row.Scopes,
		ProfileID:       mapNullString(row.ProfileID),
		RefreshTokenID:  mapNullString(row.RefreshTokenID),
		AuthorizationID: mapNullString(row.AuthorizationID),
		ExpiresAt:       mapNullTimePtr(row.ExpiresAt),
		Rotations:       int(row.Rotations),
		CreatedAt:       fromNanos(row.CreatedAt),
	}
}
