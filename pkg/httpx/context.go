package httpx

import "context"

type ctxKey string

const (
	CtxKeyBearerToken ctxKey = "bearer_token"
	CtxKeyRemoteIP    ctxKey = "remote_ip"
)

// BearerTokenFromContext returns the raw token extracted by BearerMiddleware.
func BearerTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyBearerToken).(string); ok {
		return v
	}
	return ""
}

// RemoteIPFromContext returns the client address stored by RemoteIPMiddleware.
func RemoteIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRemoteIP).(string); ok {
		return v
	}
	return ""
}
