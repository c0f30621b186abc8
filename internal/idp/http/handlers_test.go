package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
)

func TestCodeFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", nil)

	key := ts.login("n-1")
	code := ts.code(key, creds, "openid", "email", "offline_access")

	tokens, err := ts.sdk.ExchangeAuthorizationCode(ts.ctx, creds, code, redirectURI, "")
	require.NoError(t, err)
	require.Equal(t, "Bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.IDToken)
	require.NotEmpty(t, tokens.RefreshToken)

	info, err := ts.sdk.GetUserInfo(ts.ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.NotEmpty(t, info.Sub())
	require.Equal(t, "john.doe@example.com", info["email"])

	t.Run("code is single use", func(t *testing.T) {
		_, err := ts.sdk.ExchangeAuthorizationCode(ts.ctx, creds, code, redirectURI, "")
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)
		require.Equal(t, "rp", oerr.ClientID)
	})

	t.Run("refresh rotates", func(t *testing.T) {
		refreshed, err := ts.sdk.RefreshGrant(ts.ctx, creds, tokens.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)
		require.NotEqual(t, tokens.AccessToken, refreshed.AccessToken)

		revoked, err := ts.sdk.RevokeToken(ts.ctx, creds, refreshed.RefreshToken, "refresh_token")
		require.NoError(t, err)
		require.Equal(t, 0, revoked.Err)
	})

	t.Run("revoked access token", func(t *testing.T) {
		_, err := ts.sdk.RevokeToken(ts.ctx, creds, tokens.AccessToken, "access_token")
		require.NoError(t, err)

		_, err = ts.sdk.GetUserInfo(ts.ctx, tokens.AccessToken)
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, http.StatusUnauthorized, oerr.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidToken, oerr.Code)
	})
}

func TestAuthorize_LoginRequired(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", nil)

	res, err := ts.sdk.Authorize(ts.ctx, "", authsdk.AuthorizeParams{
		ClientID:    creds.ClientID,
		RedirectURI: redirectURI,
		Nonce:       "n-1",
		LoginHint:   "jdoe",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Login)
	require.Equal(t, "n-1", res.Login.Nonce)
	require.Equal(t, []string{"jdoe"}, res.Login.LoginHint)
	require.True(t, strings.HasPrefix(res.Login.Next, "/idp/oidc/authorize?"))

	// Logging in with next lands back on the authorize endpoint
	form := url.Values{"username": {"jdoe"}, "password": {testPassword}, "next": {res.Login.Next}}
	req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.srv.URL+"/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := ts.do(req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, res.Login.Next, resp.Header.Get("Location"))

	var key string
	for _, c := range resp.Cookies() {
		if c.Name == authsdk.SessionCookieName {
			key = c.Value
			require.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, key)

	t.Run("prompt none without session", func(t *testing.T) {
		res, err := ts.sdk.Authorize(ts.ctx, "", authsdk.AuthorizeParams{
			ClientID:    creds.ClientID,
			RedirectURI: redirectURI,
			State:       "st",
			Prompt:      "none",
		})
		require.NoError(t, err)
		require.Equal(t, "login_required", res.Location.Query().Get("error"))
		require.Equal(t, "st", res.Location.Query().Get("state"))
	})
}

func TestAuthorize_LocalErrors(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", nil)
	key := ts.login("")

	t.Run("unknown redirect URI", func(t *testing.T) {
		_, err := ts.sdk.Authorize(ts.ctx, key, authsdk.AuthorizeParams{
			ClientID:    creds.ClientID,
			RedirectURI: "https://evil.example.com/cb",
		})
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, oerr.Code)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := ts.sdk.Authorize(ts.ctx, key, authsdk.AuthorizeParams{
			ClientID:    "ghost",
			RedirectURI: redirectURI,
		})
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, oerr.Code)
	})

	t.Run("redirected error", func(t *testing.T) {
		res, err := ts.sdk.Authorize(ts.ctx, key, authsdk.AuthorizeParams{
			ClientID:     creds.ClientID,
			RedirectURI:  redirectURI,
			ResponseType: "token",
			State:        "st",
		})
		require.NoError(t, err)
		q := res.Location.Query()
		require.Equal(t, "unsupported_response_type", q.Get("error"))
		require.Equal(t, "st", q.Get("state"))
	})
}

func TestAuthorize_Consent(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", func(c *domain.Client) {
		c.AuthorizationMode = domain.AuthorizationByService
		c.Scope = "openid email profile"
	})
	key := ts.login("")
	params := authsdk.AuthorizeParams{
		ClientID:    creds.ClientID,
		RedirectURI: redirectURI,
		Scopes:      []string{"openid", "email"},
		State:       "xyz",
	}

	res, err := ts.sdk.Authorize(ts.ctx, key, params)
	require.NoError(t, err)
	require.NotNil(t, res.Consent)
	require.Equal(t, "rp", res.Consent.ClientID)
	require.Equal(t, []string{"email"}, res.Consent.Scopes)
	require.True(t, res.Consent.NeedsScopeValidation)

	res, err = ts.sdk.AnswerConsent(ts.ctx, key, params, authsdk.ConsentAnswer{})
	require.NoError(t, err)
	require.Equal(t, "access_denied", res.Location.Query().Get("error"))

	res, err = ts.sdk.AnswerConsent(ts.ctx, key, params, authsdk.ConsentAnswer{Accept: true, DoNotAskAgain: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.Location.Query().Get("code"))

	// The saved authorization covers the next request
	res, err = ts.sdk.Authorize(ts.ctx, key, params)
	require.NoError(t, err)
	require.NotNil(t, res.Location)
	require.NotEmpty(t, res.Location.Query().Get("code"))
}

func TestToken_ClientAuthentication(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.client("rp", nil)

	t.Run("bad basic credentials", func(t *testing.T) {
		_, err := ts.sdk.ExchangeAuthorizationCode(ts.ctx, authsdk.Credentials{ClientID: "rp", ClientSecret: "wrong"}, "c", redirectURI, "")
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, http.StatusUnauthorized, oerr.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidClient, oerr.Code)
	})

	t.Run("challenge header", func(t *testing.T) {
		form := url.Values{"grant_type": {"authorization_code"}, "code": {"c"}, "redirect_uri": {redirectURI}}
		req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.srv.URL+authsdk.PathToken, strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth("ghost", "secret")
		resp := ts.do(req)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
	})

	t.Run("credentials in body", func(t *testing.T) {
		form := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {"unknown"},
			"client_id":     {"rp"},
			"client_secret": {"rp-secret"},
		}
		req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.srv.URL+authsdk.PathToken, strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := ts.do(req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

		var body authsdk.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "rp", body.ClientID)
	})

	t.Run("unknown grant", func(t *testing.T) {
		form := url.Values{"grant_type": {"client_credentials"}}
		req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.srv.URL+authsdk.PathToken, strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := ts.do(req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPasswordGrant(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("ro", func(c *domain.Client) {
		c.AuthorizationFlow = domain.FlowResourceOwnerCred
		c.UsesRefreshTokens = false
	})

	session, err := ts.sdk.AuthenticateWithPassword(ts.ctx, creds, authsdk.PasswordGrantRequest{
		Username: "jdoe",
		Password: testPassword,
		Scopes:   []string{"openid", "email"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.IDToken())

	info, err := session.UserInfo(ts.ctx)
	require.NoError(t, err)
	require.Equal(t, "john.doe@example.com", info["email"])

	_, err = ts.sdk.PasswordGrant(ts.ctx, creds, authsdk.PasswordGrantRequest{Username: "jdoe", Password: "wrong"})
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, authsdk.ErrorCodeAccessDenied, oerr.Code)
	require.Equal(t, "ro", oerr.ClientID)
}

func TestUserInfo_BearerErrors(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	t.Run("missing", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ts.ctx, http.MethodGet, ts.srv.URL+authsdk.PathUserInfo, nil)
		require.NoError(t, err)
		resp := ts.do(req)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("unknown token", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.srv.URL+authsdk.PathUserInfo, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer nope")
		resp := ts.do(req)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_token"`)
	})
}

func TestRevoke_Errors(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", nil)

	_, err := ts.sdk.RevokeToken(ts.ctx, creds, "nope", "refresh_token")
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, oerr.Code)
	require.Equal(t, "unknown refresh_token: nope", oerr.Description)

	_, err = ts.sdk.RevokeToken(ts.ctx, creds, "nope", "id_token")
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, oerr.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, err := ts.sdk.Login(ts.ctx, "jdoe", "wrong", "", "")
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusUnauthorized, oerr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)

	_, err = ts.sdk.Login(ts.ctx, "jdoe", testPassword, "nowhere", "")
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("rp", nil)
	key := ts.login("")
	ts.code(key, creds, "openid")

	t.Run("unknown post logout URI", func(t *testing.T) {
		_, err := ts.sdk.Logout(ts.ctx, key, "https://evil.example.com/bye", "")
		var oerr *authsdk.OAuth2Error
		require.True(t, errors.As(err, &oerr))
		require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
	})

	out, err := ts.sdk.Logout(ts.ctx, key, "https://rp.example.com/bye", "s1")
	require.NoError(t, err)
	require.Equal(t, "https://rp.example.com/bye?state=s1", out.RedirectURI)
	require.Len(t, out.Frontchannel, 1)
	require.Equal(t, "Relying party rp", out.Frontchannel[0].Name)
	require.True(t, strings.HasPrefix(out.Frontchannel[0].FrontchannelLogoutURI, "https://rp.example.com/logout"))

	// The session is gone
	res, err := ts.sdk.Authorize(ts.ctx, key, authsdk.AuthorizeParams{ClientID: creds.ClientID, RedirectURI: redirectURI})
	require.NoError(t, err)
	require.NotNil(t, res.Login)
}

func TestSubjectLookup(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	creds := ts.client("api", func(c *domain.Client) { c.HasAPIAccess = true })
	plain := ts.client("plain", nil)

	key := ts.login("")
	tokens, err := ts.sdk.ExchangeAuthorizationCode(ts.ctx, creds, ts.code(key, creds, "openid"), redirectURI, "")
	require.NoError(t, err)
	info, err := ts.sdk.GetUserInfo(ts.ctx, tokens.AccessToken)
	require.NoError(t, err)

	id, err := ts.sdk.LookupSubject(ts.ctx, creds, info.Sub())
	require.NoError(t, err)
	require.Equal(t, ts.user.UUIDHex(), id)

	_, err = ts.sdk.LookupSubject(ts.ctx, creds, "bm90LWEtc3Vi")
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusNotFound, oerr.StatusCode)

	_, err = ts.sdk.LookupSubject(ts.ctx, plain, info.Sub())
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusForbidden, oerr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeUnauthorizedClient, oerr.Code)
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	live, err := ts.sdk.GetLiveness(ts.ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.sdk.GetReadiness(ts.ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	jwks, err := ts.sdk.GetJWKS(ts.ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "ES256", jwks.Keys[0].Alg)

	req, err := http.NewRequestWithContext(ts.ctx, http.MethodGet, ts.srv.URL+"/metrics", nil)
	require.NoError(t, err)
	resp := ts.do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
