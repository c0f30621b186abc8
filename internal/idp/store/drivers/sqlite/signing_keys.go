package sqlite

import (
	"context"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite/gen"
)

type signingKeysRepo struct {
	q *gen.Queries
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, key domain.SigningKey) error {
	return mapConstraint(r.q.CreateSigningKey(ctx, gen.CreateSigningKeyParams{
		ID:               key.ID,
		Kid:              key.Kid,
		Algorithm:        key.Algorithm,
		PrivateKeySealed: key.PrivateKeySealed,
		CreatedAt:        nanos(key.CreatedAt),
		RetiredAt:        mapOptionalTime(key.RetiredAt),
		ExpiresAt:        nanos(key.ExpiresAt),
	}))
}

func (r *signingKeysRepo) GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error) {
	row, err := r.q.GetSigningKeyByKid(ctx, kid)
	if err != nil {
		return domain.SigningKey{}, mapNotFound(err)
	}
	return mapSigningKey(row), nil
}

func (r *signingKeysRepo) ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	rows, err := r.q.ListActiveSigningKeys(ctx, nanos(time.Now()))
	if err != nil {
		return nil, err
	}
	return mapSigningKeys(rows), nil
}

func (r *signingKeysRepo) ListPublishedSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	rows, err := r.q.ListPublishedSigningKeys(ctx, nanos(time.Now()))
	if err != nil {
		return nil, err
	}
	return mapSigningKeys(rows), nil
}

func (r *signingKeysRepo) RetireSigningKey(ctx context.Context, kid string) error {
	return expectOne(r.q.RetireSigningKey(ctx, gen.RetireSigningKeyParams{
		RetiredAt: mapTimeNull(time.Now()),
		Kid:       kid,
	}))
}

func (r *signingKeysRepo) DeleteExpiredSigningKeys(ctx context.Context) error {
	return r.q.DeleteExpiredSigningKeys(ctx, nanos(time.Now()))
}

func mapSigningKeys(rows []gen.SigningKey) []domain.SigningKey {
	keys := make([]domain.SigningKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, mapSigningKey(row))
	}
	return keys
}

func mapSigningKey(row gen.SigningKey) domain.SigningKey {
	return domain.SigningKey{
		ID:               row.ID,
		Kid:              row.Kid,
		Algorithm:        row.Algorithm,
		PrivateKeySealed: row.PrivateKeySealed,
		CreatedAt:        fromNanos(row.CreatedAt),
		RetiredAt:        mapNullTimePtr(row.RetiredAt),
		ExpiresAt:        fromNanos(row.ExpiresAt),
	}
}
