package idp_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
)

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

func TestHealthEndpoints(t *testing.T) {
	client := setupIDPContainer(t, nil)

	t.Run("livez", func(t *testing.T) {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
	})

	t.Run("readyz", func(t *testing.T) {
		health, err := client.GetReadiness(t.Context())
		assertHealthy(t, health, err)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})
}

// TestJWKSEndpoint checks both server key algorithms are published.
func TestJWKSEndpoint(t *testing.T) {
	client := setupIDPContainer(t, nil)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, jwks.Keys)

	algs := map[string]bool{}
	for _, key := range jwks.Keys {
		require.NotEmpty(t, key.Kid)
		require.Equal(t, "sig", key.Use)
		algs[key.Alg] = true
	}
	require.True(t, algs["RS256"], "an RSA key should be published")
	require.True(t, algs["ES256"], "an EC key should be published")
}

func TestSwaggerDocs(t *testing.T) {
	client := setupIDPContainer(t, nil)

	resp, err := http.Get(client.BaseURL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/idp/oidc/token")
}
