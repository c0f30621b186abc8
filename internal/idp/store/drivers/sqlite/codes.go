package sqlite

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type codesRepo struct {
	q *gen.Queries
}

func (r *codesRepo) CreateCode(ctx context.Context, c domain.Code) error {
	return mapConstraint(r.q.CreateCode(ctx, gen.CreateCodeParams{
		ID:                  c.ID,
		CodeHash:            c.CodeHash,
		ClientID:            c.ClientID,
		UserID:              c.UserID,
		ProfileID:           mapStringNull(c.ProfileID),
		Scopes:              c.Scopes,
		State:               mapOptionalString(c.State),
		Nonce:               mapOptionalString(c.Nonce),
		RedirectUri:         c.RedirectURI,
		SessionKey:          c.SessionKey,
		AuthTime:            nanos(c.AuthTime),
		CodeChallenge:       c.CodeChallenge,
		CodeChallengeMethod: string(c.CodeChallengeMethod),
		AuthorizationID:     mapStringNull(c.AuthorizationID),
		ExpiresAt:           nanos(c.ExpiresAt),
		UsedAt:              mapOptionalTime(c.UsedAt),
		CreatedAt:           nanos(c.CreatedAt),
	}))
}

func (r *codesRepo) GetCodeByHash(ctx context.Context, hash string, now time.Time) (domain.Code, error) {
	row, err := r.q.GetCodeByHash(ctx, gen.GetCodeByHashParams{
		CodeHash: hash,
		Now:      nanos(now),
	})
	if err != nil {
		return domain.Code{}, mapNotFound(err)
	}
	return mapCode(row), nil
}

func (r *codesRepo) ConsumeCode(ctx context.Context, id string, now time.Time) error {
	return expectOne(r.q.ConsumeCode(ctx, gen.ConsumeCodeParams{
		UsedAt: mapTimeNull(now),
		ID:     id,
		Now:    nanos(now),
	}))
}

// DeleteExpiredCodes drops expired codes and consumed ones.
func (r *codesRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) error {
	return r.q.DeleteExpiredCodes(ctx, nanos(now))
}

func mapCode(row gen.Code) domain.Code {
	return domain.Code{
		ID:                  row.ID,
		CodeHash:            row.CodeHash,
		ClientID:            row.ClientID,
		UserID:              row.UserID,
		ProfileID:           mapNullString(row.ProfileID),
		Scopes:              row.Scopes,
		State:               mapNullStringPtr(row.State),
		Nonce:               mapNullStringPtr(row.Nonce),
		RedirectURI:         row.RedirectUri,
		SessionKey:          row.SessionKey,
		AuthTime:            fromNanos(row.AuthTime),
		CodeChallenge:       row.CodeChallenge,
		CodeChallengeMethod: domain.CodeChallengeMethod(row.CodeChallengeMethod),
		AuthorizationID:     mapNullString(row.AuthorizationID),
		ExpiresAt:           fromNanos(row.ExpiresAt),
		UsedAt:              mapNullTimePtr(row.UsedAt),
		CreatedAt:           fromNanos(row.CreatedAt),
	}
}
