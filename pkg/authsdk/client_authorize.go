package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// PKCEChallenge holds the PKCE verifier and challenge pair.
// The verifier is kept secret by the client, and the challenge is sent to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy cryptographic random string (kept secret)
	Verifier string

	// Challenge is the base64url-encoded SHA256 hash of the verifier (sent to server)
	Challenge string

	// Method is always "S256" for SHA256
	Method string
}

// GeneratePKCEChallenge creates a new PKCE code verifier and challenge pair.
// Uses cryptox.TokenSize256 (256 bits of entropy) and SHA256 hashing per RFC 7636.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: cryptox.S256Challenge(verifier),
		Method:    "S256",
	}, nil
}

// AuthorizeParams are the authorize endpoint parameters.
type AuthorizeParams struct {
	ClientID    string
	RedirectURI string
	// ResponseType defaults to "code".
	ResponseType string
	// Scopes default to "openid".
	Scopes    []string
	State     string
	Nonce     string
	Prompt    string
	MaxAge    string
	LoginHint string
	PKCE      *PKCEChallenge
}

func (p AuthorizeParams) values() url.Values {
	params := url.Values{}
	responseType := p.ResponseType
	if responseType == "" {
		responseType = "code"
	}
	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid"}
	}
	params.Set("response_type", responseType)
	params.Set("client_id", p.ClientID)
	params.Set("redirect_uri", p.RedirectURI)
	params.Set("scope", strings.Join(scopes, " "))

	optional := map[string]string{
		"state":      p.State,
		"nonce":      p.Nonce,
		"prompt":     p.Prompt,
		"max_age":    p.MaxAge,
		"login_hint": p.LoginHint,
	}
	for k, v := range optional {
		if v != "" {
			params.Set(k, v)
		}
	}
	if p.PKCE != nil {
		params.Set("code_challenge", p.PKCE.Challenge)
		params.Set("code_challenge_method", p.PKCE.Method)
	}
	return params
}

// BuildAuthorizeURL constructs the URL a browser is sent to in order to
// start an authorization.
//
// Example:
//
//	pkce, _ := authsdk.GeneratePKCEChallenge()
//	url := client.BuildAuthorizeURL(authsdk.AuthorizeParams{
//		ClientID:    "rp",
//		RedirectURI: "https://rp.example.com/cb",
//		Scopes:      []string{"openid", "email"},
//		State:       "random-state",
//		PKCE:        pkce,
//	})
func (c *SDKClient) BuildAuthorizeURL(p AuthorizeParams) string {
	return fmt.Sprintf("%s%s?%s", c.BaseURL, PathAuthorize, p.values().Encode())
}

// Login authenticates a user and returns the session key to present as the
// SessionCookieName cookie.
func (c *SDKClient) Login(ctx context.Context, username, password, ouSlug, nonce string) (string, error) {
	data := url.Values{
		"username": {username},
		"password": {password},
	}
	if ouSlug != "" {
		data.Set("ou_slug", ouSlug)
	}
	if nonce != "" {
		data.Set("nonce", nonce)
	}

	resp, err := c.postForm(ctx, PathLogin, data, nil)
	if err != nil {
		return "", err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("login response missing %s cookie", SessionCookieName)
}

// AuthorizeResult is the answer of the authorize endpoint: exactly one of
// the fields is set.
type AuthorizeResult struct {
	// Location is the redirect target, carrying either the code (or tokens)
	// or an error for the relying party.
	Location *url.URL

	// Login is set when the user must authenticate first.
	Login *LoginRequiredResponse

	// Consent is set when the user must accept the scopes.
	Consent *ConsentResponse
}

// Authorize sends an authorize request for the browser session sessionKey
// ("" for an anonymous browser) without following the redirect.
func (c *SDKClient) Authorize(ctx context.Context, sessionKey string, p AuthorizeParams) (*AuthorizeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildAuthorizeURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.sendAuthorize(req, sessionKey)
}

// ConsentAnswer is the user decision posted back to the authorize endpoint.
type ConsentAnswer struct {
	Accept        bool
	DoNotAskAgain bool
	ProfileID     string
}

// AnswerConsent posts the user decision for a pending consent.
func (c *SDKClient) AnswerConsent(
	ctx context.Context,
	sessionKey string,
	p AuthorizeParams,
	answer ConsentAnswer,
) (*AuthorizeResult, error) {
	data := url.Values{}
	if answer.Accept {
		data.Set("accept", "1")
	}
	if answer.DoNotAskAgain {
		data.Set("do_not_ask_again", "on")
	}
	if answer.ProfileID != "" {
		data.Set("profile-validation", answer.ProfileID)
	}

	target := fmt.Sprintf("%s%s?%s", c.BaseURL, PathAuthorize, p.values().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.sendAuthorize(req, sessionKey)
}

func (c *SDKClient) sendAuthorize(req *http.Request, sessionKey string) (*AuthorizeResult, error) {
	if sessionKey != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionKey})
	}

	resp, err := c.noRedirectClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusFound:
		location, err := resp.Location()
		if err != nil {
			return nil, fmt.Errorf("redirect response missing Location header: %w", err)
		}
		return &AuthorizeResult{Location: location}, nil
	case http.StatusUnauthorized:
		var login LoginRequiredResponse
		if err := json.Unmarshal(bodyBytes, &login); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &AuthorizeResult{Login: &login}, nil
	case http.StatusOK:
		var consent ConsentResponse
		if err := json.Unmarshal(bodyBytes, &consent); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &AuthorizeResult{Consent: &consent}, nil
	}
	return nil, parseErrorResponse(resp, bodyBytes)
}

// ParseAuthorizationCallback extracts the parameters of an authorization
// redirect, from the fragment for implicit responses and from the query
// otherwise. An error redirect is returned as an *OAuth2Error.
//
// Example:
//
//	params, err := authsdk.ParseAuthorizationCallback("https://rp.example.com/cb?code=xyz&state=abc")
//	if err != nil {
//	    // Handle error (e.g., user denied authorization)
//	}
//	code := params.Get("code")
func ParseAuthorizationCallback(callbackURL string) (url.Values, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse callback URL: %w", err)
	}

	params := u.Query()
	if u.Fragment != "" {
		params, err = url.ParseQuery(u.Fragment)
		if err != nil {
			return nil, fmt.Errorf("failed to parse callback fragment: %w", err)
		}
	}

	if errorCode := params.Get("error"); errorCode != "" {
		return params, &OAuth2Error{
			StatusCode:  http.StatusFound,
			Code:        errorCode,
			Description: params.Get("error_description"),
		}
	}
	if params.Get("code") == "" && params.Get("id_token") == "" {
		return nil, fmt.Errorf("callback missing authorization code")
	}
	return params, nil
}
