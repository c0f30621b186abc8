package store

import (
	"context"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
)

// KeyStoreAdapter adapts the store.Store interface to the jwtx.KeyStore interface.
// This allows the jwtx package to work with signing keys without depending on the
// domain package directly.
type KeyStoreAdapter struct {
	store Store
}

// NewKeyStoreAdapter creates a new adapter that implements jwtx.KeyStore using a store.Store.
func NewKeyStoreAdapter(store Store) *KeyStoreAdapter {
	return &KeyStoreAdapter{store: store}
}

// ListPublishedSigningKeys returns every unexpired key, retired ones
// included, so tokens they signed still verify.
func (a *KeyStoreAdapter) ListPublishedSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListPublishedSigningKeys(ctx)
	if err != nil {
		return nil, err
	}
	return domainKeysToJWTXRecords(keys), nil
}

// ListActiveSigningKeys returns only keys that may still sign.
func (a *KeyStoreAdapter) ListActiveSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, err
	}
	return domainKeysToJWTXRecords(keys), nil
}

// CreateSigningKey stores a new signing key with sealed private key material.
func (a *KeyStoreAdapter) CreateSigningKey(ctx context.Context, key jwtx.SigningKeyRecord) error {
	return a.store.SigningKeys().CreateSigningKey(ctx, jwtxRecordToDomain(key))
}

func domainKeysToJWTXRecords(keys []domain.SigningKey) []jwtx.SigningKeyRecord {
	records := make([]jwtx.SigningKeyRecord, len(keys))
	for i, key := range keys {
		records[i] = jwtx.SigningKeyRecord{
			ID:               key.ID,
			Kid:              key.Kid,
			Algorithm:        key.Algorithm,
			PrivateKeySealed: key.PrivateKeySealed,
			CreatedAt:        key.CreatedAt,
			RetiredAt:        key.RetiredAt,
			ExpiresAt:        key.ExpiresAt,
		}
	}
	return records
}

func jwtxRecordToDomain(record jwtx.SigningKeyRecord) domain.SigningKey {
	return domain.SigningKey{
		ID:               record.ID,
		Kid:              record.Kid,
		Algorithm:        record.Algorithm,
		PrivateKeySealed: record.PrivateKeySealed,
		CreatedAt:        record.CreatedAt,
		RetiredAt:        record.RetiredAt,
		ExpiresAt:        record.ExpiresAt,
	}
}
