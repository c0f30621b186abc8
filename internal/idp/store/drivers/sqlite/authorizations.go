package sqlite

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type authorizationsRepo struct {
	q *gen.Queries
}

func (r *authorizationsRepo) CreateAuthorization(ctx context.Context, a domain.Authorization) error {
	return mapConstraint(r.q.CreateAuthorization(ctx, gen.CreateAuthorizationParams{
		ID:         a.ID,
		TargetKind: string(a.Target.Kind),
		TargetID:   a.Target.ID,
		UserID:     a.UserID,
		Scopes:     a.Scopes,
		ProfileID:  mapStringNull(a.ProfileID),
		ExpiresAt:  nanos(a.ExpiresAt),
		CreatedAt:  nanos(a.CreatedAt),
	}))
}

func (r *authorizationsRepo) ListAuthorizations(ctx context.Context, target domain.AuthorizationTarget, userID string) ([]domain.Authorization, error) {
	rows, err := r.q.ListAuthorizations(ctx, gen.ListAuthorizationsParams{
		TargetKind: string(target.Kind),
		TargetID:   target.ID,
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Authorization, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAuthorization(row))
	}
	return out, nil
}

func (r *authorizationsRepo) DeleteAuthorizations(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := r.q.DeleteAuthorization(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *authorizationsRepo) DeleteUserAuthorizations(ctx context.Context, target domain.AuthorizationTarget, userID string) error {
	return r.q.DeleteUserAuthorizations(ctx, gen.DeleteUserAuthorizationsParams{
		TargetKind: string(target.Kind),
		TargetID:   target.ID,
		UserID:     userID,
	})
}

func (r *authorizationsRepo) DeleteExpiredAuthorizations(ctx context.Context, now time.Time) error {
	return r.q.DeleteExpiredAuthorizations(ctx, nanos(now))
}

func mapAuthorization(row gen.Authorization) domain.Authorization {
	return domain.Authorization{
		ID: row.ID,
		Target: domain.AuthorizationTarget{
			Kind: domain.TargetKind(row.TargetKind),
			ID:   row.TargetID,
		},
		UserID:    row.UserID,
		Scopes:    row.Scopes,
		ProfileID: mapNullString(row.ProfileID),
		ExpiresAt: fromNanos(row.ExpiresAt),
		CreatedAt: fromNanos(row.CreatedAt),
	}
}
