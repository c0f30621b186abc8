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

// writeServiceError renders err returned by the engine for endpoint.
// Error redirects go back to the relying party, other protocol errors are
// written as JSON and anything else is a server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var rerr *service.RedirectError
	if errors.As(err, &rerr) {
		service.LogError(ctx, log, endpoint, rerr.OIDCError)
		httpx.NoCache(w)
		http.Redirect(w, r, rerr.Location(), http.StatusFound)
		return
	}

	var oerr *service.OIDCError
	if errors.As(err, &oerr) {
		service.LogError(ctx, log, endpoint, oerr)
		httpx.WriteJSON(w, oerr.Status, oerr.Body())
		return
	}

	log.Error(endpoint+" failed", "err", err)
	authsdk.ErrServerError.WriteError(w)
}

// parseForm checks the body is form encoded when one is declared, then
// parses it.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"content type must be application/x-www-form-urlencoded")
		return false
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return false
	}
	return true
}

// clientCredentials reads the client credentials of a token, revocation
// or API request: HTTP Basic when an Authorization header is present,
// otherwise client_id and client_secret from the body.
func clientCredentials(r *http.Request) service.ClientCredentials {
	if authz := r.Header.Get("Authorization"); authz != "" {
		creds := service.ClientCredentials{FromHeader: true}
		if id, secret, ok := httpx.ParseBasicAuth(authz); ok {
			creds.ID = id
			creds.Secret = secret
		}
		return creds
	}
	return service.ClientCredentials{
		InForm: r.PostForm.Has("client_id"),
		ID:     r.PostForm.Get("client_id"),
		Secret: r.PostForm.Get("client_secret"),
	}
}

// writeClientError renders err and adds the Basic challenge when the client
// failed HTTP Basic authentication.
func writeClientError(w http.ResponseWriter, r *http.Request, endpoint string, creds service.ClientCredentials, err error) {
	var oerr *service.OIDCError
	if creds.FromHeader && errors.As(err, &oerr) && oerr.Code == service.CodeInvalidClient {
		oerr.Status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", `Basic realm="idp"`)
	}
	writeServiceError(w, r, endpoint, err)
}
