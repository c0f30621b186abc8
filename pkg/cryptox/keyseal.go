package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// MasterKeyEnv is consulted by LoadSealer when no key file is configured.
const MasterKeyEnv = "IDP_MASTER_KEY"

// ErrSealedTooShort is returned when sealed data cannot even hold a nonce.
var ErrSealedTooShort = errors.New("cryptox: sealed data too short")

// Sealer encrypts signing keys at rest with AES-256-GCM. Output layout is
// nonce | ciphertext | tag.
type Sealer struct {
	aead cipher.AEAD
	// Ephemeral is true when no master key was configured and a random one
	// was generated; sealed data will not survive a restart.
	Ephemeral bool
}

// NewSealer derives an AES-256 key from arbitrary key material.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty master key material")
	}
	sum := sha256.Sum256(material)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// LoadSealer builds a Sealer from the file at path, or from MasterKeyEnv when
// path is empty, falling back to a random ephemeral key.
func LoadSealer(path string) (*Sealer, error) {
	var material []byte
	ephemeral := false

	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cryptox: read master key file: %w", err)
		}
		material = data
	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("cryptox: generate ephemeral master key: %w", err)
		}
		ephemeral = true
	}

	s, err := NewSealer(material)
	if err != nil {
		return nil, err
	}
	s.Ephemeral = ephemeral
	return s, nil
}

// Seal encrypts plaintext with a random nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrSealedTooShort
	}
	out, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open sealed data: %w", err)
	}
	return out, nil
}
