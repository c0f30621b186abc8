package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

const appFixtures = `
ous:
  - slug: default
users:
  - username: jdoe
    email: john.doe@example.com
    password: s3cret
    ou: default
clients:
  - client_id: cli
    secret: cli-secret
    ou: default
    redirect_uris: [https://cli.example.com/cb]
    identifier_policy: uuid
    idtoken_algo: es256
    authorization_flow: password
    scope: openid email
    claims:
      - name: email
        value: email
        scopes: [email]
`

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(appFixtures), 0o600))

	return Config{
		Issuer:              "https://idp.example.com",
		SecretKey:           "test-secret",
		KeyStorageMode:      "ephemeral",
		NumKeys:             1,
		DatabaseFile:        ":memory:",
		PepperFile:          filepath.Join(dir, "pepper"),
		FixturesFile:        fixtures,
		PasswordGrantRate:   "100/m",
		Env:                 "test",
		Port:                0,
		ShutdownGracePeriod: time.Second,
	}
}

func TestApplication(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	app, err := newApplication(cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	sdk := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err = os.Stat(cfg.PepperFile)
	require.NoError(t, err, "pepper file is created on first start")

	ready, err := sdk.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	creds := authsdk.Credentials{ClientID: "cli", ClientSecret: "cli-secret"}
	tokens, err := sdk.PasswordGrant(ctx, creds, authsdk.PasswordGrantRequest{
		Username: "jdoe",
		Password: "s3cret",
		Scopes:   []string{"openid", "email"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.IDToken)

	info, err := sdk.GetUserInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "john.doe@example.com", info["email"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `idp_oidc_events_total{client_id="cli",event="token-issued"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}

func TestApplication_RouteLimits(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.RouteLimits = httpx.Limits{Strict: httpx.Limit{Requests: 1, Window: time.Minute, Burst: 1}}

	app, err := newApplication(cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	sdk := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err = sdk.Login(ctx, "jdoe", "s3cret", "", "")
	require.NoError(t, err)
	_, err = sdk.Login(ctx, "jdoe", "s3cret", "", "")
	require.Error(t, err, "second login within the window is refused")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `idp_http_rate_limited_total{route="POST /login"} 1`)
}

func TestApplication_InvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("key storage mode", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.KeyStorageMode = "hsm"
		_, err := newApplication(cfg, slogx.Discard())
		require.ErrorContains(t, err, "unknown key storage mode")
	})

	t.Run("password grant rate", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.PasswordGrantRate = "lots"
		_, err := newApplication(cfg, slogx.Discard())
		require.ErrorContains(t, err, "IDP_PASSWORD_GRANT_RATELIMIT")
	})

	t.Run("fixtures file", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.FixturesFile = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := newApplication(cfg, slogx.Discard())
		require.ErrorContains(t, err, "failed to provision fixtures")
	})
}
