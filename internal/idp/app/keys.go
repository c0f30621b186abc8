package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
)

// InitSigningKeys creates the KeyManager holding the RS256 and ES256 ID token
// keys. HS256 clients sign with their own secret and need no server key.
//
// Storage modes:
//   - "ephemeral": keys are generated on startup and kept in memory only.
//     ID tokens issued before a restart can no longer be verified.
//   - "persistent": keys are sealed with the master key and stored in the
//     database. They stay published until their grace period ends.
func InitSigningKeys(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		RSABits: cfg.RSABits,
		NumKeys: cfg.NumKeys,
	}

	switch cfg.KeyStorageMode {
	case "persistent":
		sealer, err := cryptox.LoadSealer(cfg.MasterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load master key: %w", err)
		}
		if sealer.Ephemeral {
			logger.Warn("no master key configured, persisted signing keys will be unreadable after restart",
				"env", cryptox.MasterKeyEnv,
			)
		}

		logger.Info("initializing persistent key manager",
			"num_keys", cfg.NumKeys,
			"grace_period", cfg.KeyGracePeriod,
		)

		km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
			KeyManagerOptions: opts,
			Store:             store.NewKeyStoreAdapter(db),
			Sealer:            sealer,
			GracePeriod:       cfg.KeyGracePeriod,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize persistent key manager: %w", err)
		}
		logKeys(logger, km)
		return km, nil

	case "ephemeral", "":
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}
		logKeys(logger, km)
		logger.Warn("signing keys are ephemeral, ID tokens cannot be verified after a restart")
		return km, nil

	default:
		return nil, fmt.Errorf("unknown key storage mode %q (expected ephemeral or persistent)", cfg.KeyStorageMode)
	}
}

func logKeys(logger *slog.Logger, km *jwtx.KeyManager) {
	for _, alg := range km.Algorithms() {
		logger.Info("signing keys loaded", "algorithm", alg, "num_keys", km.NumSigners(alg))
	}
}
