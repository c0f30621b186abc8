package httpx

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives the bucket a request is counted against. An empty key
// means the request is not limited.
type KeyFunc func(*http.Request) string

// ClientIP returns the address of the user agent. The first X-Forwarded-For
// hop wins over X-Real-IP, which wins over the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RemoteIPMiddleware stores ClientIP in the request context for services
// that key throttling state by address.
func RemoteIPMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), CtxKeyRemoteIP, ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FormValue keys by a query or body parameter.
func FormValue(field string) KeyFunc {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(field)
	}
}

// ClientID returns the OAuth2 client identifier from HTTP Basic credentials,
// or from the client_id parameter when the client posts its credentials.
func ClientID(r *http.Request) string {
	if id, _, ok := ParseBasicAuth(r.Header.Get("Authorization")); ok {
		return id
	}
	return FormValue("client_id")(r)
}

// ByIP keys by client address.
func ByIP() KeyFunc { return ClientIP }

// ByClient keys by client identifier, falling back to the address for
// requests that carry none.
func ByClient() KeyFunc {
	return func(r *http.Request) string {
		if id := ClientID(r); id != "" {
			return "client:" + id
		}
		return "ip:" + ClientIP(r)
	}
}

// ByIPAndField keys by address and a parameter, e.g. the login username.
// Requests without the parameter share the address bucket.
func ByIPAndField(field string) KeyFunc {
	value := FormValue(field)
	return func(r *http.Request) string {
		ip := ClientIP(r)
		if v := value(r); v != "" {
			return ip + "|" + v
		}
		return ip
	}
}
