package httpx_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestBearerMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.BearerTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), httpx.BearerMiddleware())

	tests := []struct {
		name   string
		header string
		status int
		desc   string
	}{
		{"missing", "", http.StatusUnauthorized, "Bearer authentication is mandatory"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid Bearer authentication"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Invalid Bearer authentication"},
		{"valid", "Bearer tok-123", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.Equal(t, "tok-123", seen)
				return
			}
			require.Equal(t,
				`Bearer error="invalid_request", error_description="`+tt.desc+`"`,
				rec.Header().Get("WWW-Authenticate"))
			require.Contains(t, rec.Body.String(), tt.desc)
		})
	}
}

func TestParseBasicAuth(t *testing.T) {
	t.Parallel()

	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	user, pass, ok := httpx.ParseBasicAuth("Basic " + enc("rp:s3cret"))
	require.True(t, ok)
	require.Equal(t, "rp", user)
	require.Equal(t, "s3cret", pass)

	for _, bad := range []string{
		"Bearer " + enc("rp:s3cret"),
		"Basic " + enc("no-colon"),
		"Basic " + enc("a:b:c"),
		"Basic !!!",
		"Basic",
	} {
		_, _, ok := httpx.ParseBasicAuth(bad)
		require.False(t, ok, bad)
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusBadRequest, "invalid_grant", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"invalid_grant"}`, rec.Body.String())
}

func TestIsFormContentType(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.True(t, httpx.IsFormContentType(req))

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	require.False(t, httpx.IsFormContentType(req))
}
