package idp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
)

func passwordRequest(pw string) authsdk.PasswordGrantRequest {
	return authsdk.PasswordGrantRequest{
		Username: username,
		Password: pw,
		Scopes:   []string{"openid", "email"},
	}
}

// TestPasswordGrant verifies an ES256 ID token issued to the password client
// against the published keys.
func TestPasswordGrant(t *testing.T) {
	client := setupIDPContainer(t, nil)
	ctx := context.Background()

	tokens, err := client.PasswordGrant(ctx, roCreds, passwordRequest(password))
	require.NoError(t, err)
	assertTokenResponse(t, tokens, false)
	require.NotEmpty(t, tokens.IDToken)

	jwks, err := client.GetJWKS(ctx)
	require.NoError(t, err)

	claims := verifyWithJWKS(t, jwks, tokens.IDToken, roCreds.ClientID)
	require.NotEmpty(t, claims["sub"])

	info, err := client.GetUserInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, claims["sub"], info.Sub())
	require.Equal(t, userEmail, info["email"])

	t.Run("code flow client is refused", func(t *testing.T) {
		_, err := client.PasswordGrant(ctx, rpCreds, passwordRequest(password))
		assertOAuth2Error(t, err, authsdk.ErrorCodeUnauthorizedClient)
	})
}

// TestPasswordGrantBackoff checks a wrong password blocks further attempts
// for the same username and client.
func TestPasswordGrantBackoff(t *testing.T) {
	client := setupIDPContainer(t, map[string]string{
		"IDP_BACKOFF_DURATION": "30s",
		"IDP_BACKOFF_MAX":      "60s",
	})
	ctx := context.Background()

	_, err := client.PasswordGrant(ctx, roCreds, passwordRequest("wrong"))
	oerr := assertOAuth2Error(t, err, authsdk.ErrorCodeAccessDenied)
	require.Equal(t, "Invalid user credentials", oerr.Description)

	_, err = client.PasswordGrant(ctx, roCreds, passwordRequest(password))
	oerr = assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidRequest)
	require.Contains(t, oerr.Description, "Too many attempts")
}

// TestPasswordGrantClientRateLimit exhausts the per-client window.
func TestPasswordGrantClientRateLimit(t *testing.T) {
	client := setupIDPContainer(t, map[string]string{
		"IDP_PASSWORD_GRANT_RATELIMIT": "3/m",
	})
	ctx := context.Background()

	_, err := client.PasswordGrant(ctx, roCreds, passwordRequest(password))
	require.NoError(t, err)

	var limited *authsdk.OAuth2Error
	for range 6 {
		_, err = client.PasswordGrant(ctx, roCreds, passwordRequest(password))
		var oerr *authsdk.OAuth2Error
		if errors.As(err, &oerr) {
			limited = oerr
			break
		}
		require.NoError(t, err)
	}
	require.NotNil(t, limited, "the client limit should trip")
	require.Equal(t, authsdk.ErrorCodeInvalidClient, limited.Code)
	require.Contains(t, limited.Description, `exceeded for client "ro"`)
}
