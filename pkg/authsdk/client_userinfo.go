package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetUserInfo returns the claims released for accessToken.
func (c *SDKClient) GetUserInfo(ctx context.Context, accessToken string) (UserInfoResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, PathUserInfo, nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var info UserInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return info, nil
}

// Logout ends the browser session sessionKey. postLogoutRedirectURI must
// be registered by a client; state is appended to it.
func (c *SDKClient) Logout(ctx context.Context, sessionKey, postLogoutRedirectURI, state string) (*LogoutResponse, error) {
	params := url.Values{}
	if postLogoutRedirectURI != "" {
		params.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}
	if state != "" {
		params.Set("state", state)
	}
	path := PathLogout
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	if sessionKey != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionKey})
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	var out LogoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupSubject translates a sub issued to creds back to the user UUID.
// The client must have API access.
func (c *SDKClient) LookupSubject(ctx context.Context, creds Credentials, sub string) (string, error) {
	resp, err := c.postForm(ctx, PathSubject, url.Values{"sub": {sub}}, &creds)
	if err != nil {
		return "", err
	}

	var out SubjectResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.UUID, nil
}
