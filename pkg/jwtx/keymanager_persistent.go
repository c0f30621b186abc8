package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
)

// SigningKeyRecord is a stored signing key. The private key is sealed.
type SigningKeyRecord struct {
	ID               string
	Kid              string
	Algorithm        string
	PrivateKeySealed []byte
	CreatedAt        time.Time
	RetiredAt        *time.Time
	ExpiresAt        time.Time
}

// KeyStore is the persistence needed by NewPersistentKeyManager.
type KeyStore interface {
	// ListPublishedSigningKeys returns every key that has not expired yet,
	// retired ones included.
	ListPublishedSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// ListActiveSigningKeys returns keys that may still sign.
	ListActiveSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// CreateSigningKey stores a new key.
	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

// PersistentKeyManagerOptions configures a KeyManager backed by a KeyStore.
type PersistentKeyManagerOptions struct {
	KeyManagerOptions

	Store  KeyStore
	Sealer *cryptox.Sealer

	// GracePeriod is the lifetime of a new key record. Defaults to 30 days.
	GracePeriod time.Duration
}

// NewPersistentKeyManager loads keys from the store, publishing all
// unexpired ones and signing with the active ones, and tops up each
// algorithm to NumKeys active keys.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil {
		return nil, errors.New("jwtx: Store is required for persistent key manager")
	}
	if opts.Sealer == nil {
		return nil, errors.New("jwtx: Sealer is required for persistent key manager")
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 30 * 24 * time.Hour
	}

	published, err := opts.Store.ListPublishedSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: load published keys: %w", err)
	}
	active, err := opts.Store.ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: load active keys: %w", err)
	}

	km := newKeyManager()

	isActive := make(map[string]bool, len(active))
	for _, rec := range active {
		isActive[rec.Kid] = true
	}

	for _, rec := range published {
		pemData, err := opts.Sealer.Open(rec.PrivateKeySealed)
		if err != nil {
			return nil, fmt.Errorf("jwtx: unseal key %s: %w", rec.Kid, err)
		}
		signer, err := signerFromPEM(rec.Algorithm, rec.Kid, pemData)
		if err != nil {
			return nil, fmt.Errorf("jwtx: load key %s: %w", rec.Kid, err)
		}

		if isActive[rec.Kid] {
			if err := km.AddSigner(signer); err != nil {
				return nil, err
			}
			continue
		}
		if err := km.KeySet.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: publish key %s: %w", rec.Kid, err)
		}
	}

	now := time.Now().UTC()
	for _, alg := range opts.Algorithms {
		for km.NumSigners(alg) < opts.NumKeys {
			kid, err := generateKeyID(alg)
			if err != nil {
				return nil, err
			}
			pemData, signer, err := generateSigner(alg, kid, opts.RSABits)
			if err != nil {
				return nil, fmt.Errorf("jwtx: generate %s key: %w", alg, err)
			}
			sealed, err := opts.Sealer.Seal(pemData)
			if err != nil {
				return nil, fmt.Errorf("jwtx: seal new key: %w", err)
			}

			rec := SigningKeyRecord{
				ID:               idx.New().String(),
				Kid:              kid,
				Algorithm:        alg,
				PrivateKeySealed: sealed,
				CreatedAt:        now,
				ExpiresAt:        now.Add(opts.GracePeriod),
			}
			if err := opts.Store.CreateSigningKey(ctx, rec); err != nil {
				return nil, fmt.Errorf("jwtx: store new key: %w", err)
			}
			if err := km.AddSigner(signer); err != nil {
				return nil, err
			}
		}
	}

	return km, nil
}
