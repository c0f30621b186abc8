package sqlite

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type accessTokensRepo struct {
	q *gen.Queries
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	return mapConstraint(r.q.CreateAccessToken(ctx, gen.CreateAccessTokenParams{
		ID:              t.ID,
		TokenHash:       t.TokenHash,
		ClientID:        t.ClientID,
		UserID:          t.UserID,
		Scopes:          t.Scopes,
		SessionKey:      t.SessionKey,
		ProfileID:       mapStringNull(t.ProfileID),
		RefreshTokenID:  mapStringNull(t.RefreshTokenID),
		AuthorizationID: mapStringNull(t.AuthorizationID),
		ExpiresAt:       mapOptionalTime(t.ExpiresAt),
		CreatedAt:       nanos(t.CreatedAt),
	}))
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	row, err := r.q.GetAccessTokenByHash(ctx, hash)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return mapAccessToken(row), nil
}

func (r *accessTokensRepo) ExpireAccessToken(ctx context.Context, hash, clientID string, at time.Time) error {
	return expectOne(r.q.ExpireAccessToken(ctx, gen.ExpireAccessTokenParams{
		ExpiresAt: mapTimeNull(at),
		TokenHash: hash,
		ClientID:  clientID,
	}))
}

func (r *accessTokensRepo) ExpireAccessTokensByRefreshToken(ctx context.Context, refreshID string, at time.Time) error {
	return r.q.ExpireAccessTokensByRefreshToken(ctx, gen.ExpireAccessTokensByRefreshTokenParams{
		ExpiresAt:      mapTimeNull(at),
		RefreshTokenID: mapStringNull(refreshID),
	})
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context, now time.Time) error {
	return r.q.DeleteExpiredAccessTokens(ctx, nanos(now))
}

func mapAccessToken(row gen.AccessToken) domain.AccessToken {
	return domain.AccessToken{
		ID:              row.ID,
		TokenHash:       row.TokenHash,
		ClientID:        row.ClientID,
		UserID:          row.UserID,
		Scopes:          row.Scopes,
		SessionKey:      row.SessionKey,
		ProfileID:       mapNullString(row.ProfileID),
		RefreshTokenID:  mapNullString(row.RefreshTokenID),
		AuthorizationID: mapNullString(row.AuthorizationID),
		ExpiresAt:       mapNullTimePtr(row.ExpiresAt),
		CreatedAt:       fromNanos(row.CreatedAt),
	}
}
