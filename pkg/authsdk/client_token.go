package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint paths.
const (
	PathAuthorize = "/idp/oidc/authorize"
	PathToken     = "/idp/oidc/token"
	PathUserInfo  = "/idp/oidc/user_info"
	PathRevoke    = "/idp/oidc/revoke"
	PathLogout    = "/idp/oidc/logout"
	PathCerts     = "/idp/oidc/certs"
	PathSubject   = "/idp/oidc/api/subject"
	PathLogin     = "/login"
)

// PasswordGrantRequest holds the optional parameters of the password grant.
type PasswordGrantRequest struct {
	Username string
	Password string
	Scopes   []string
	// OUSlug restricts the user lookup to one organizational unit.
	OUSlug string
	// ProfileID selects a user profile, for clients with profiles enabled.
	ProfileID string
}

// ExchangeAuthorizationCode exchanges an authorization code for tokens.
//
// Parameters:
//   - code: The authorization code received from the authorize endpoint
//   - redirectURI: Must match the redirect_uri used in the authorization request
//   - codeVerifier: The PKCE verifier from the original PKCEChallenge (optional, but required if PKCE was used)
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	creds Credentials,
	code, redirectURI, codeVerifier string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	if codeVerifier != "" {
		data.Set("code_verifier", codeVerifier)
	}

	return c.requestToken(ctx, creds, data)
}

// PasswordGrant requests tokens with the resource owner password
// credentials grant. The client must be registered for it.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	creds Credentials,
	req PasswordGrantRequest,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"username":   {req.Username},
		"password":   {req.Password},
	}
	if len(req.Scopes) > 0 {
		data.Set("scope", strings.Join(req.Scopes, " "))
	}
	if req.OUSlug != "" {
		data.Set("ou_slug", req.OUSlug)
	}
	if req.ProfileID != "" {
		data.Set("profile", req.ProfileID)
	}

	return c.requestToken(ctx, creds, data)
}

// RefreshGrant requests new tokens using a refresh token. The refresh token
// is rotated: use the one returned from now on.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	creds Credentials,
	refreshToken string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	return c.requestToken(ctx, creds, data)
}

// RevokeToken expires an access_token or refresh_token issued to creds.
func (c *SDKClient) RevokeToken(
	ctx context.Context,
	creds Credentials,
	token, tokenType string,
) (*RevokeResponse, error) {
	data := url.Values{
		"token":      {token},
		"token_type": {tokenType},
	}

	resp, err := c.postForm(ctx, PathRevoke, data, &creds)
	if err != nil {
		return nil, err
	}

	var out RevokeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) requestToken(ctx context.Context, creds Credentials, data url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, PathToken, data, &creds)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
