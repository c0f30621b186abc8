package service

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
)

var ErrNoSigningKey = errors.New("service: no signing key for client algorithm")

// SignIDToken signs claims with the algorithm configured for client: HS256
// keyed with the client secret, or RS256/ES256 with a server key.
func (e *Engine) SignIDToken(client domain.Client, claims map[string]any) (string, error) {
	mc := jwt.MapClaims(claims)
	switch client.IDTokenAlgo {
	case domain.AlgoHMAC:
		return jwtx.SignHS256([]byte(client.Secret), mc)
	case domain.AlgoRSA:
		return e.signWithServerKey(jwtx.AlgorithmRS256, mc)
	case domain.AlgoEC:
		return e.signWithServerKey(jwtx.AlgorithmES256, mc)
	}
	return "", fmt.Errorf("service: unknown id token algorithm %d", client.IDTokenAlgo)
}

func (e *Engine) signWithServerKey(alg string, claims jwt.MapClaims) (string, error) {
	if e.Keys == nil {
		return "", ErrNoSigningKey
	}
	signer, err := e.Keys.GetSigner(alg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSigningKey, err)
	}
	return signer.Sign(claims)
}

// IDTokenDuration is the client ID token lifetime, else the default.
func (e *Engine) IDTokenDuration(client domain.Client) int64 {
	if client.IDTokenDuration != nil {
		return int64(client.IDTokenDuration.Seconds())
	}
	return int64(e.cfg.IDTokenDuration.Seconds())
}

// SessionID derives the per (session, client) sid claim.
func (e *Engine) SessionID(sessionKey string, client domain.Client) string {
	h := md5.New()
	h.Write([]byte(sessionKey))
	h.Write([]byte(client.ClientID))
	h.Write(e.cfg.SecretKey)
	return hex.EncodeToString(h.Sum(nil))
}

// acr is "1" when the request nonce is the one the session authenticated
// with.
func acr(nonce *string, session domain.Session) string {
	if nonce != nil && session.AuthNonce != "" && *nonce == session.AuthNonce {
		return "1"
	}
	return "0"
}
