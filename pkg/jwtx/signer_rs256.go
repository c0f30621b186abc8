package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Signer implements Signer using RSA SHA-256.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// newRS256Signer accepts both PKCS1 and PKCS8 encodings.
func newRS256Signer(kid string, pemKey []byte) (*RS256Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse RSA key: %w", err)
		}
		return &RS256Signer{kid: kid, key: key}, nil
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA private key")
		}
		return &RS256Signer{kid: kid, key: key}, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}

func (s *RS256Signer) Alg() string { return AlgorithmRS256 }
func (s *RS256Signer) KID() string { return s.kid }

// Sign serializes claims as a compact JWS with the kid header set.
func (s *RS256Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, "sig", AlgorithmRS256, &s.key.PublicKey)
}

func (s *RS256Signer) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil RSA key")
	}
	return s.key.Validate()
}
