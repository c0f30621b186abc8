/*
Package authsdk provides a client SDK for the OpenID Connect identity provider.

# Overview

SDKClient wraps the provider endpoints: the browser flow (login, authorize,
consent, logout), the token endpoint grants, userinfo, revocation, the
subject lookup API, the published keys and the health checks. Session holds
the tokens of one authorization and refreshes the access token when it
expires.

	client := authsdk.NewSDKClient("https://idp.example.com")
	creds := authsdk.Credentials{ClientID: "rp", ClientSecret: "secret"}

# Authorization Code Flow

A browser session is opened with Login, then the authorize endpoint answers
with a redirect, a login requirement or a consent prompt:

	key, err := client.Login(ctx, "jdoe", "password", "", nonce)
	pkce, _ := authsdk.GeneratePKCEChallenge()
	params := authsdk.AuthorizeParams{
		ClientID:    "rp",
		RedirectURI: "https://rp.example.com/cb",
		Scopes:      []string{"openid", "email"},
		Nonce:       nonce,
		PKCE:        pkce,
	}
	res, err := client.Authorize(ctx, key, params)
	if res.Consent != nil {
		res, err = client.AnswerConsent(ctx, key, params, authsdk.ConsentAnswer{Accept: true})
	}
	cb, err := authsdk.ParseAuthorizationCallback(res.Location.String())
	tokens, err := client.ExchangeAuthorizationCode(ctx, creds, cb.Get("code"), params.RedirectURI, pkce.Verifier)

# Password Grant

Clients registered for the resource owner password credentials flow can
authenticate users directly:

	session, err := client.AuthenticateWithPassword(ctx, creds, authsdk.PasswordGrantRequest{
		Username: "jdoe",
		Password: "password",
	})
	claims, err := session.UserInfo(ctx)

# Errors

Protocol failures are returned as *OAuth2Error carrying the HTTP status,
the OAuth2 error code and its description:

	var oerr *authsdk.OAuth2Error
	if errors.As(err, &oerr) && oerr.Code == authsdk.ErrorCodeInvalidGrant {
		// start over
	}
*/
package authsdk
