package http

import (
	"errors"
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// UserInfoHandler serves the claims granted to a bearer access token.
type UserInfoHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		UserInfo Endpoint
//	@Description	Returns the claims of the user the access token was issued for, filtered by the
//	@Description	token scopes and the client claim mappings.
//	@Tags			OIDC
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserInfoResponse	"claims"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid_token"
//	@Router			/idp/oidc/user_info [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, err := h.Engine.UserInfo(ctx, httpx.BearerTokenFromContext(ctx))
	if err != nil {
		var oerr *service.OIDCError
		if errors.As(err, &oerr) && oerr.Status == http.StatusUnauthorized {
			service.LogError(ctx, log, "user_info", oerr)
			httpx.WriteBearerError(w, oerr.Status, oerr.Code, oerr.Description)
			return
		}
		writeServiceError(w, r, "user_info", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfoResponse(claims))
}
