package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// LoginHandler authenticates a user with a password and opens the browser
// session carried by the authsdk.SessionCookieName cookie.
type LoginHandler struct {
	Engine        *service.Engine
	SecureCookies bool
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates a user and sets the session cookie. With next (a path on this
//	@Description	server, typically the one returned by the authorize endpoint) the browser is
//	@Description	redirected there.
//	@Tags			Session
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					true	"Username or email"
//	@Param			password	formData	string					true	"Password"
//	@Param			ou_slug		formData	string					false	"Organizational unit slug"
//	@Param			nonce		formData	string					false	"Nonce of the authorization being completed"
//	@Param			next		formData	string					false	"Relative URL to redirect to"
//	@Success		200			{object}	authsdk.LoginResponse	"expires_at"
//	@Success		302			"redirect to next"
//	@Failure		401			{object}	authsdk.ErrorResponse	"invalid credentials"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !parseForm(w, r) {
		return
	}
	form := r.PostForm

	session, err := h.Engine.Login(ctx, service.LoginRequest{
		Username: strings.TrimSpace(form.Get("username")),
		Password: form.Get("password"),
		OUSlug:   form.Get("ou_slug"),
		Nonce:    form.Get("nonce"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Info("login failed", "username", form.Get("username"))
			authsdk.ErrInvalidGrant.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.SessionCookieName,
		Value:    session.Key,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if next := form.Get("next"); isLocalPath(next) {
		httpx.NoCache(w)
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{ExpiresAt: session.ExpiresAt.Unix()})
}

// sessionKey returns the browser session key, or "".
func sessionKey(r *http.Request) string {
	c, err := r.Cookie(authsdk.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// isLocalPath accepts absolute paths on this host only.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
