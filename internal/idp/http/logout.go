package http

import (
	"errors"
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// LogoutHandler ends the browser session. The response lists the
// front-channel logout pages to load before following redirect_uri.
type LogoutHandler struct {
	Engine        *service.Engine
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		End Session Endpoint
//	@Description	Ends the browser session and returns the relying party front-channel logout
//	@Description	URLs. post_logout_redirect_uri must be registered by a client.
//	@Tags			Session
//	@Produce		json
//	@Param			post_logout_redirect_uri	query		string					false	"Where to send the browser afterwards"
//	@Param			state						query		string					false	"Opaque state appended to the redirect"
//	@Success		200							{object}	authsdk.LogoutResponse	"redirect_uri, frontchannel"
//	@Failure		400							{object}	authsdk.ErrorResponse	"invalid post logout URI"
//	@Router			/idp/oidc/logout [get].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	res, err := h.Engine.Logout(ctx, service.LogoutRequest{
		SessionKey:            sessionKey(r),
		PostLogoutRedirectURI: q.Get("post_logout_redirect_uri"),
		State:                 q.Get("state"),
	})
	if errors.Is(err, service.ErrInvalidPostLogoutURI) {
		log.Warn("logout with unknown post logout URI", "uri", q.Get("post_logout_redirect_uri"))
		authsdk.ErrInvalidPostLogoutURI.WriteError(w)
		return
	}
	if err != nil {
		log.Error("logout failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	resp := authsdk.LogoutResponse{
		RedirectURI:  res.RedirectURI,
		Frontchannel: make([]authsdk.FrontchannelLogout, 0, len(res.Frontchannel)),
	}
	for _, e := range res.Frontchannel {
		resp.Frontchannel = append(resp.Frontchannel, authsdk.FrontchannelLogout{
			FrontchannelLogoutURI: e.FrontchannelLogoutURI,
			FrontchannelTimeout:   e.FrontchannelTimeout,
			Name:                  e.Name,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
