package jwtx

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// DefaultAlgorithms are the server-key algorithms a KeyManager provisions
// when none are configured. HS256 never needs a server key.
var DefaultAlgorithms = []string{AlgorithmRS256, AlgorithmES256}

const (
	defaultRSABits = 2048
	defaultNumKeys = 1
	maxNumKeys     = 10
)

// KeyManager owns the asymmetric signing keys, one pool per algorithm, and
// the KeySet that publishes their public halves.
type KeyManager struct {
	KeySet *KeySet

	mu      sync.RWMutex
	signers map[string][]Signer
}

// KeyManagerOptions configures key generation.
type KeyManagerOptions struct {
	// Algorithms to provision. Defaults to DefaultAlgorithms.
	Algorithms []string

	// RSABits is the RSA modulus size for RS256 keys. Defaults to 2048.
	RSABits int

	// NumKeys is the number of active keys per algorithm, capped at 10.
	NumKeys int
}

func (o *KeyManagerOptions) normalize() error {
	if len(o.Algorithms) == 0 {
		o.Algorithms = DefaultAlgorithms
	}
	for _, alg := range o.Algorithms {
		if alg != AlgorithmRS256 && alg != AlgorithmES256 {
			return fmt.Errorf("jwtx: unsupported server key algorithm %q (supported: RS256, ES256)", alg)
		}
	}
	if o.RSABits == 0 {
		o.RSABits = defaultRSABits
	}
	if o.NumKeys <= 0 {
		o.NumKeys = defaultNumKeys
	}
	if o.NumKeys > maxNumKeys {
		o.NumKeys = maxNumKeys
	}
	return nil
}

func newKeyManager() *KeyManager {
	return &KeyManager{KeySet: NewKeySet(), signers: make(map[string][]Signer)}
}

// NewEphemeralKeyManager generates in-memory keys. ID tokens signed with them
// cannot be verified after a restart.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	km := newKeyManager()
	for _, alg := range opts.Algorithms {
		for i := 0; i < opts.NumKeys; i++ {
			kid, err := generateKeyID(alg)
			if err != nil {
				return nil, err
			}
			_, signer, err := generateSigner(alg, kid, opts.RSABits)
			if err != nil {
				return nil, fmt.Errorf("jwtx: generate %s key %d: %w", alg, i+1, err)
			}
			if err := km.AddSigner(signer); err != nil {
				return nil, err
			}
		}
	}
	return km, nil
}

// GetSigner returns one of the active signers for alg, picked at random.
func (km *KeyManager) GetSigner(alg string) (Signer, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	pool := km.signers[alg]
	switch len(pool) {
	case 0:
		return nil, fmt.Errorf("%w: no %s signing key", ErrNoKey, alg)
	case 1:
		return pool[0], nil
	default:
		return pool[rand.IntN(len(pool))], nil
	}
}

// AddSigner adds an active signer and publishes its public key.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("jwtx: signer cannot be nil")
	}
	if err := signer.Validate(); err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}
	km.signers[signer.Alg()] = append(km.signers[signer.Alg()], signer)
	return nil
}

// Algorithms lists the algorithms that currently have an active signer.
func (km *KeyManager) Algorithms() []string {
	km.mu.RLock()
	defer km.mu.RUnlock()

	out := make([]string, 0, len(km.signers))
	for alg, pool := range km.signers {
		if len(pool) > 0 {
			out = append(out, alg)
		}
	}
	slices.Sort(out)
	return out
}

// NumSigners returns the number of active signers for alg.
func (km *KeyManager) NumSigners(alg string) int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers[alg])
}

// IsReady reports whether any public key is published.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

func generateSigner(alg, kid string, rsaBits int) ([]byte, Signer, error) {
	var (
		pemData []byte
		err     error
	)
	switch alg {
	case AlgorithmRS256:
		pemData, err = cryptox.GenerateRSAKey(rsaBits)
	case AlgorithmES256:
		pemData, err = cryptox.GenerateES256Key()
	default:
		return nil, nil, fmt.Errorf("unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, nil, err
	}

	signer, err := signerFromPEM(alg, kid, pemData)
	if err != nil {
		return nil, nil, err
	}
	return pemData, signer, nil
}

func signerFromPEM(alg, kid string, pemData []byte) (Signer, error) {
	switch alg {
	case AlgorithmRS256:
		return NewSignerRS256(kid, pemData)
	case AlgorithmES256:
		return NewSignerES256(kid, pemData)
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", alg)
	}
}

// generateKeyID returns "idp-<alg>-<128 bit token>".
func generateKeyID(alg string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: generate key id: %w", err)
	}
	return "idp-" + strings.ToLower(alg) + "-" + token, nil
}
