package idp_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
)

/*
 * Common constants and helpers for the identity provider end-to-end tests:
 * image build, container setup with provisioned fixtures, and assertions.
 */

const (
	testImageName = "publik-idp-test:latest"
	testIssuer    = "https://idp.test"

	username    = "jdoe"
	password    = "Passw0rd!"
	userEmail   = "john.doe@example.com"
	redirectURI = "https://rp.example.com/cb"
	logoutURI   = "https://rp.example.com/bye"
)

var (
	rpCreds = authsdk.Credentials{ClientID: "rp", ClientSecret: "rp-secret"}
	roCreds = authsdk.Credentials{ClientID: "ro", ClientSecret: "ro-secret"}
)

// fixtures provisions one user and two clients: "rp" uses the authorization
// code flow with HS256 ID tokens and reversible pairwise subs, "ro" the
// password grant with ES256 ID tokens.
const fixtures = `
ous:
  - slug: default
    name: Default
users:
  - username: jdoe
    email: john.doe@example.com
    email_verified: true
    first_name: John
    last_name: Doe
    password: Passw0rd!
    ou: default
clients:
  - client_id: rp
    secret: rp-secret
    name: Relying Party
    ou: default
    redirect_uris: [https://rp.example.com/cb]
    post_logout_redirect_uris: [https://rp.example.com/bye]
    frontchannel_logout_uri: https://rp.example.com/logout
    identifier_policy: pairwise-reversible
    idtoken_algo: hmac
    authorization_mode: none
    scope: openid email profile
    uses_refresh_tokens: true
    has_api_access: true
    claims:
      - name: email
        value: email
        scopes: [email]
      - name: name
        value: "{{ .first_name }} {{ .last_name }}"
        scopes: [profile]
  - client_id: ro
    secret: ro-secret
    name: Resource Owner
    ou: default
    redirect_uris: [https://ro.example.com/cb]
    identifier_policy: uuid
    idtoken_algo: es256
    authorization_flow: password
    scope: openid email
    claims:
      - name: email
        value: email
        scopes: [email]
`

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building identity provider Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up identity provider Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/idp/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // the image might not exist
}

// relaxedLimits raises the per-route limits so tests making many rapid
// requests are not throttled.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupIDPContainer starts the identity provider with the fixtures loaded
// and returns an SDK client pointing at it. env overrides the defaults.
func setupIDPContainer(t *testing.T, env map[string]string) *authsdk.SDKClient {
	t.Helper()
	ctx := context.Background()

	containerEnv := map[string]string{
		"IDP_ISSUER":        testIssuer,
		"IDP_SECRET_KEY":    "e2e-secret-key",
		"IDP_FIXTURES_FILE": "/data/fixtures.yaml",
		"ENV":               "test",
		"LOG_LEVEL":         "info",
		"LOG_FORMAT":        "json",
	}
	for k, v := range relaxedLimits {
		containerEnv[k] = v
	}
	for k, v := range env {
		containerEnv[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          containerEnv,
		Files: []testcontainers.ContainerFile{{
			Reader:            strings.NewReader(fixtures),
			ContainerFilePath: "/data/fixtures.yaml",
			FileMode:          0o644,
		}},
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return authsdk.NewSDKClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

// authorizeCode logs jdoe in and runs an authorization for rp, returning the
// session key and the code.
func authorizeCode(t *testing.T, client *authsdk.SDKClient, nonce string, scopes ...string) (string, string) {
	t.Helper()
	ctx := context.Background()

	key, err := client.Login(ctx, username, password, "", nonce)
	require.NoError(t, err, "login should succeed")

	res, err := client.Authorize(ctx, key, authsdk.AuthorizeParams{
		ClientID:    rpCreds.ClientID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		State:       "e2e-state",
		Nonce:       nonce,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Location, "authorization should redirect")

	params, err := authsdk.ParseAuthorizationCallback(res.Location.String())
	require.NoError(t, err)
	require.Equal(t, "e2e-state", params.Get("state"))
	require.Equal(t, testIssuer, params.Get("iss"))
	return key, params.Get("code")
}

// assertTokenResponse verifies the fields every grant returns. Refresh
// responses carry no ID token, so callers check that themselves.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse, withRefresh bool) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "access token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType)
	require.Positive(t, resp.ExpiresIn)
	if withRefresh {
		require.NotEmpty(t, resp.RefreshToken, "refresh token should not be empty")
	}
}

// assertOAuth2Error checks err is a protocol error with the given code.
func assertOAuth2Error(t *testing.T, err error, code string) *authsdk.OAuth2Error {
	t.Helper()
	require.Error(t, err)
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr), "expected an OAuth2 error, got %T: %v", err, err)
	require.Equal(t, code, oerr.Code, "unexpected error: %s", oerr.Description)
	return oerr
}

// verifyWithJWKS checks an RS256 or ES256 ID token against the published keys.
func verifyWithJWKS(t *testing.T, jwks *authsdk.JWKSResponse, raw, audience string) jwt.MapClaims {
	t.Helper()

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		kid, _ := tok.Header["kid"].(string)
		for _, k := range jwks.Keys {
			if k.Kid != kid {
				continue
			}
			switch k.Kty {
			case "EC":
				return &ecdsa.PublicKey{Curve: elliptic.P256(), X: b64Int(t, k.X), Y: b64Int(t, k.Y)}, nil
			case "RSA":
				return &rsa.PublicKey{N: b64Int(t, k.N), E: int(b64Int(t, k.E).Int64())}, nil
			}
		}
		return nil, fmt.Errorf("no published key with kid %q", kid)
	},
		jwt.WithValidMethods([]string{"ES256", "RS256"}),
		jwt.WithIssuer(testIssuer),
		jwt.WithAudience(audience),
	)
	require.NoError(t, err)
	return claims
}

// verifyWithSecret checks an HS256 ID token keyed with the client secret.
func verifyWithSecret(t *testing.T, raw string, creds authsdk.Credentials) jwt.MapClaims {
	t.Helper()

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(creds.ClientSecret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(testIssuer),
		jwt.WithAudience(creds.ClientID),
	)
	require.NoError(t, err)
	return claims
}

func b64Int(t *testing.T, s string) *big.Int {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(s)
	require.NoError(t, err)
	return new(big.Int).SetBytes(b)
}
