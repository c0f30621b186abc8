package http

import (
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
)

// TokenHandler serves POST /idp/oidc/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Token Endpoint
//	@Description	Issues tokens for the authorization_code, password and refresh_token grants.
//	@Description	Clients authenticate with HTTP Basic or client_id and client_secret in the body.
//	@Tags			OIDC
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code, password, refresh_token)
//	@Param			code			formData	string					false	"Authorization code (authorization_code grant)"
//	@Param			redirect_uri	formData	string					false	"Redirect URI used at the authorize step"
//	@Param			code_verifier	formData	string					false	"PKCE code_verifier"
//	@Param			username		formData	string					false	"Username (password grant)"
//	@Param			password		formData	string					false	"Password (password grant)"
//	@Param			scope			formData	string					false	"Space-delimited scopes (password grant)"
//	@Param			ou_slug			formData	string					false	"Organizational unit slug (password grant)"
//	@Param			profile			formData	string					false	"Profile identifier (password grant)"
//	@Param			refresh_token	formData	string					false	"Refresh token (refresh_token grant)"
//	@Param			client_id		formData	string					false	"Client identifier when not using HTTP Basic"
//	@Param			client_secret	formData	string					false	"Client secret when not using HTTP Basic"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, id_token, refresh_token"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description, client_id"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid client credentials in the Authorization header"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/idp/oidc/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The password grant reports a missing form encoding itself
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}
	form := r.PostForm

	req := service.TokenRequest{
		GrantType:    form.Get("grant_type"),
		Client:       clientCredentials(r),
		RemoteIP:     httpx.RemoteIPFromContext(ctx),
		FormEncoded:  httpx.IsFormContentType(r),
		Code:         form.Get("code"),
		RedirectURI:  form.Get("redirect_uri"),
		CodeVerifier: form.Get("code_verifier"),
		Username:     form.Get("username"),
		Password:     form.Get("password"),
		Scope:        optional(form, "scope"),
		ProfileID:    form.Get("profile"),
		OUSlug:       optional(form, "ou_slug"),
		RefreshToken: form.Get("refresh_token"),
	}

	resp, err := h.Engine.Token(ctx, req)
	if err != nil {
		writeClientError(w, r, "token", req.Client, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	})
}
