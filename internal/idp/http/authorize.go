package http

import (
	"net/http"
	"net/url"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// AuthorizeHandler serves the OpenID Connect authorization endpoint.
//
// The provider has no HTML surface: a login requirement is answered with a
// 401 JSON document naming the URL to come back to after POST /login, and
// a consent requirement with a 200 JSON document. Posting the same query
// back with the consent form fields completes the authorization.
type AuthorizeHandler struct {
	Engine *service.Engine
}

// HandleGet godoc
//
//	@Summary		Authorization Endpoint
//	@Description	Starts an authorization code or implicit flow for the browser session cookie.
//	@Description	Redirects to the relying party with a code, tokens or an error once the client
//	@Description	and redirect URI are valid.
//	@Tags			OIDC
//	@Produce		json
//	@Param			client_id				query		string							true	"Client identifier"
//	@Param			redirect_uri			query		string							true	"Registered redirect URI"
//	@Param			response_type			query		string							true	"code, id_token or id_token token"
//	@Param			scope					query		string							true	"Space-delimited scopes, must contain openid"
//	@Param			state					query		string							false	"Opaque state echoed back"
//	@Param			nonce					query		string							false	"Nonce copied into the ID token"
//	@Param			prompt					query		string							false	"none, login or consent"
//	@Param			max_age					query		integer							false	"Maximum authentication age in seconds"
//	@Param			login_hint				query		string							false	"Space-delimited login hints"
//	@Param			code_challenge			query		string							false	"PKCE challenge"
//	@Param			code_challenge_method	query		string							false	"plain or S256"
//	@Success		200						{object}	authsdk.ConsentResponse			"consent required"
//	@Success		302						"redirect to the relying party"
//	@Failure		400						{object}	authsdk.ErrorResponse			"invalid client or redirect URI"
//	@Failure		401						{object}	authsdk.LoginRequiredResponse	"login required"
//	@Router			/idp/oidc/authorize [get].
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}
	h.authorize(w, r, nil)
}

// HandlePost godoc
//
//	@Summary		Authorization Consent
//	@Description	Answers a consent prompt. The authorize parameters are sent in the query string.
//	@Description	Without accept the relying party receives access_denied.
//	@Tags			OIDC
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			accept				formData	string	false	"Present when the user accepted"
//	@Param			do_not_ask_again	formData	string	false	"on to remember the authorization"
//	@Param			profile-validation	formData	string	false	"Profile to release claims for"
//	@Success		302					"redirect to the relying party"
//	@Failure		400					{object}	authsdk.ErrorResponse	"invalid client or redirect URI"
//	@Router			/idp/oidc/authorize [post].
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	answer := &service.ConsentAnswer{
		Accept:        r.PostForm.Has("accept"),
		DoNotAskAgain: r.PostForm.Get("do_not_ask_again") == "on",
		ProfileID:     r.PostForm.Get("profile-validation"),
	}
	h.authorize(w, r, answer)
}

func (h *AuthorizeHandler) authorize(w http.ResponseWriter, r *http.Request, answer *service.ConsentAnswer) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	session, err := h.Engine.CurrentSession(ctx, sessionKey(r))
	if err != nil {
		log.Error("load session failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	// Parameters come from the query for both methods
	q := r.URL.Query()
	req := service.AuthorizeRequest{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		ResponseType:        q.Get("response_type"),
		Scope:               q.Get("scope"),
		State:               optional(q, "state"),
		Nonce:               optional(q, "nonce"),
		Prompt:              q.Get("prompt"),
		LoginHint:           q.Get("login_hint"),
		MaxAge:              q.Get("max_age"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
		Cancel:              q.Has("cancel"),
		Session:             session,
		Consent:             answer,
	}

	out, err := h.Engine.Authorize(ctx, req)
	if err != nil {
		writeServiceError(w, r, "authorize", err)
		return
	}

	switch out.Kind {
	case service.OutcomeRedirect, service.OutcomeRestricted:
		httpx.NoCache(w)
		http.Redirect(w, r, out.Location, http.StatusFound)
	case service.OutcomeLogin:
		next := url.URL{Path: r.URL.Path, RawQuery: withoutCancel(q).Encode()}
		resp := authsdk.LoginRequiredResponse{
			Error:            authsdk.ErrorCodeLoginRequired,
			ErrorDescription: "authentication is required",
			Next:             next.String(),
			LoginHint:        out.Login.LoginHint,
		}
		if out.Login.Nonce != nil {
			resp.Nonce = *out.Login.Nonce
		}
		httpx.WriteJSON(w, http.StatusUnauthorized, resp)
	case service.OutcomeConsent:
		c := out.Consent
		httpx.WriteJSON(w, http.StatusOK, authsdk.ConsentResponse{
			ClientID:              c.ClientID,
			ClientName:            c.ClientName,
			Scopes:                c.Scopes,
			NeedsScopeValidation:  c.NeedsScopeValidation,
			HasSelectableProfiles: c.HasSelectableProfiles,
			ProfileTypes:          c.ProfileTypes,
		})
	default:
		log.Error("unknown authorize outcome", "kind", out.Kind)
		authsdk.ErrServerError.WriteError(w)
	}
}

// optional returns a pointer to the value of key, or nil when absent.
func optional(v url.Values, key string) *string {
	if !v.Has(key) {
		return nil
	}
	s := v.Get(key)
	return &s
}

func withoutCancel(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		if k != "cancel" {
			out[k] = v
		}
	}
	return out
}
