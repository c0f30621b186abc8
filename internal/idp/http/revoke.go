package http

import (
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
)

// RevokeHandler serves POST /idp/oidc/revoke. Unlike RFC 7009 the token
// type is mandatory, and a token unknown to the requesting client is an
// invalid_request.
type RevokeHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Token Revocation Endpoint
//	@Description	Expires an access or refresh token issued to the authenticated client.
//	@Tags			OIDC
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string					true	"The token to revoke"
//	@Param			token_type		formData	string					true	"Token type"	Enums(access_token, refresh_token)
//	@Param			client_id		formData	string					false	"Client identifier when not using HTTP Basic"
//	@Param			client_secret	formData	string					false	"Client secret when not using HTTP Basic"
//	@Success		200				{object}	authsdk.RevokeResponse	"err, msg"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description, client_id"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid client credentials in the Authorization header"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/idp/oidc/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := service.RevokeRequest{
		Client:    clientCredentials(r),
		Token:     r.PostForm.Get("token"),
		TokenType: r.PostForm.Get("token_type"),
	}
	resp, err := h.Engine.Revoke(r.Context(), req)
	if err != nil {
		writeClientError(w, r, "revoke", req.Client, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RevokeResponse{Err: resp.Err, Msg: resp.Msg})
}
