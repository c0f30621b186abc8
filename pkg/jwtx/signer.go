package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Supported ID-token signature algorithms.
const (
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
	AlgorithmHS256 = "HS256"
)

// Signer signs ID tokens with a server-held asymmetric key whose public half
// is published in the JWKS.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerRS256 creates an RS256 signer from PEM bytes (PKCS1 or PKCS8).
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}

// NewSignerES256 creates an ES256 signer from PKCS8 PEM bytes.
func NewSignerES256(kid string, pemKey []byte) (Signer, error) {
	return newES256Signer(kid, pemKey)
}

// SignHS256 signs claims with a shared secret. Relying parties configured
// for HMAC verify ID tokens with their own client secret, so there is no
// kid and nothing to publish.
func SignHS256(secret []byte, claims jwt.Claims) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwtx: empty HMAC secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
