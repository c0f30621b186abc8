package httpx

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// BearerMiddleware requires an RFC 6750 bearer token in the Authorization
// header and stores the raw token in the request context. The token itself
// is opaque here; handlers look it up.
func BearerMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			raw, err := BearerToken(r)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				WriteBearerError(w, http.StatusUnauthorized, "invalid_request", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeyBearerToken, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Errors returned by BearerToken. Their text is sent to the client.
var (
	ErrBearerMissing = errors.New("Bearer authentication is mandatory")
	ErrBearerInvalid = errors.New("Invalid Bearer authentication")
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", ErrBearerMissing
	}
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrBearerInvalid
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrBearerInvalid
	}
	return raw, nil
}

// WriteBearerError writes an RFC 6750 error: a WWW-Authenticate challenge
// plus the usual JSON error body.
func WriteBearerError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="%s", error_description="%s"`, code, desc))
	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}

// ParseBasicAuth decodes an "Authorization: Basic" header value. The decoded
// credentials must split into exactly two parts on ':'.
func ParseBasicAuth(header string) (user, password string, ok bool) {
	scheme, encoded, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
