package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Credentials authenticate a relying party at the token, revocation and
// API endpoints. They are sent with HTTP Basic.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// SDKClient is a client for the identity provider endpoints.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new provider client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthenticateWithPassword creates an authenticated session using the
// resource owner password credentials grant.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	creds Credentials,
	req PasswordGrantRequest,
) (*Session, error) {
	tokenResp, err := c.PasswordGrant(ctx, creds, req)
	if err != nil {
		return nil, err
	}

	return newSession(c, creds, tokenResp), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an existing refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(
	ctx context.Context,
	creds Credentials,
	refreshToken string,
) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, creds, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(c, creds, tokenResp), nil
}

// NewSessionFromTokens creates an authenticated session from existing tokens.
// The session will still perform auto-refresh when the access token expires.
func (c *SDKClient) NewSessionFromTokens(creds Credentials, tokens *TokenResponse) *Session {
	return newSession(c, creds, tokens)
}
