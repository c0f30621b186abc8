package authsdk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotNil(t, pkce)
	require.NotEmpty(t, pkce.Verifier)
	require.Equal(t, "S256", pkce.Method)

	hash := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pkce.Challenge)
}

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://idp.example.com/")

	t.Run("defaults", func(t *testing.T) {
		raw := client.BuildAuthorizeURL(AuthorizeParams{ClientID: "rp", RedirectURI: "https://rp.example.com/cb"})
		u, err := url.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, "/idp/oidc/authorize", u.Path)
		q := u.Query()
		require.Equal(t, "code", q.Get("response_type"))
		require.Equal(t, "rp", q.Get("client_id"))
		require.Equal(t, "https://rp.example.com/cb", q.Get("redirect_uri"))
		require.Equal(t, "openid", q.Get("scope"))
		require.False(t, q.Has("state"))
		require.False(t, q.Has("code_challenge"))
	})

	t.Run("all parameters", func(t *testing.T) {
		pkce, err := GeneratePKCEChallenge()
		require.NoError(t, err)

		raw := client.BuildAuthorizeURL(AuthorizeParams{
			ClientID:     "rp",
			RedirectURI:  "https://rp.example.com/cb",
			ResponseType: "id_token token",
			Scopes:       []string{"openid", "email"},
			State:        "st",
			Nonce:        "n",
			Prompt:       "none",
			MaxAge:       "60",
			PKCE:         pkce,
		})
		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		require.Equal(t, "id_token token", q.Get("response_type"))
		require.Equal(t, "openid email", q.Get("scope"))
		require.Equal(t, "st", q.Get("state"))
		require.Equal(t, "n", q.Get("nonce"))
		require.Equal(t, "none", q.Get("prompt"))
		require.Equal(t, "60", q.Get("max_age"))
		require.Equal(t, pkce.Challenge, q.Get("code_challenge"))
		require.Equal(t, "S256", q.Get("code_challenge_method"))
	})
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	t.Run("code and state", func(t *testing.T) {
		params, err := ParseAuthorizationCallback("https://rp.example.com/cb?code=abc&state=xyz")
		require.NoError(t, err)
		require.Equal(t, "abc", params.Get("code"))
		require.Equal(t, "xyz", params.Get("state"))
	})

	t.Run("implicit fragment", func(t *testing.T) {
		params, err := ParseAuthorizationCallback("https://rp.example.com/cb#id_token=tok&state=xyz")
		require.NoError(t, err)
		require.Equal(t, "tok", params.Get("id_token"))
	})

	t.Run("error redirect", func(t *testing.T) {
		_, err := ParseAuthorizationCallback("https://rp.example.com/cb?error=access_denied&error_description=User+did+not+consent")
		var oerr *OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, ErrorCodeAccessDenied, oerr.Code)
		require.Equal(t, "User did not consent", oerr.Description)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := ParseAuthorizationCallback("https://rp.example.com/cb?state=xyz")
		require.ErrorContains(t, err, "missing authorization code")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := ParseAuthorizationCallback("://invalid-url")
		require.Error(t, err)
		require.Contains(t, strings.ToLower(err.Error()), "parse")
	})
}

func TestAuthorize_Outcomes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		switch {
		case err != nil:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"login_required","error_description":"login required","next":"/idp/oidc/authorize?x=1"}`))
		case r.Method == http.MethodPost:
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("accept") == "" {
				http.Redirect(w, r, "https://rp.example.com/cb?error=access_denied", http.StatusFound)
				return
			}
			http.Redirect(w, r, "https://rp.example.com/cb?code=c1", http.StatusFound)
		case cookie.Value == "consent":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"client_id":"rp","client_name":"RP","scopes":["email"],"needs_scope_validation":true}`))
		default:
			http.Redirect(w, r, "https://rp.example.com/cb?code=c0", http.StatusFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)
	ctx := context.Background()
	params := AuthorizeParams{ClientID: "rp", RedirectURI: "https://rp.example.com/cb"}

	res, err := client.Authorize(ctx, "", params)
	require.NoError(t, err)
	require.NotNil(t, res.Login)
	require.Equal(t, ErrorCodeLoginRequired, res.Login.Error)

	res, err = client.Authorize(ctx, "ok", params)
	require.NoError(t, err)
	require.Equal(t, "c0", res.Location.Query().Get("code"))

	res, err = client.Authorize(ctx, "consent", params)
	require.NoError(t, err)
	require.Equal(t, []string{"email"}, res.Consent.Scopes)

	res, err = client.AnswerConsent(ctx, "consent", params, ConsentAnswer{Accept: true})
	require.NoError(t, err)
	require.Equal(t, "c1", res.Location.Query().Get("code"))

	res, err = client.AnswerConsent(ctx, "consent", params, ConsentAnswer{})
	require.NoError(t, err)
	require.Equal(t, "access_denied", res.Location.Query().Get("error"))
}

func TestRequestToken_Error(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rp", id)
		require.Equal(t, "s3cret", secret)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Code is unknown or has expired.","client_id":"rp"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)
	_, err := client.ExchangeAuthorizationCode(context.Background(), Credentials{ClientID: "rp", ClientSecret: "s3cret"}, "c", "https://rp.example.com/cb", "")

	var oerr *OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
	require.Equal(t, ErrorCodeInvalidGrant, oerr.Code)
	require.Equal(t, "rp", oerr.ClientID)
}
