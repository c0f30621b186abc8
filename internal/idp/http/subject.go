package http

import (
	"errors"
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// SubjectLookupHandler lets a service translate a sub it was issued back
// to the user UUID.
type SubjectLookupHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Subject Lookup
//	@Description	Resolves a subject identifier issued to the authenticated client to the user
//	@Description	UUID. The client must have API access.
//	@Tags			API
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			sub	formData	string						true	"Subject identifier"
//	@Success		200	{object}	authsdk.SubjectResponse		"uuid"
//	@Failure		400	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid client credentials in the Authorization header"
//	@Failure		403	{object}	authsdk.ErrorResponse		"client has no API access"
//	@Failure		404	{object}	authsdk.ErrorResponse		"unknown subject"
//	@Router			/idp/oidc/api/subject [post].
func (h *SubjectLookupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !parseForm(w, r) {
		return
	}
	creds := clientCredentials(r)
	client, err := h.Engine.AuthenticateClient(ctx, creds)
	if err != nil {
		writeClientError(w, r, "api/subject", creds, err)
		return
	}
	if !client.HasAPIAccess {
		log.Warn("subject lookup by client without API access", "client_id", client.ClientID)
		authsdk.ErrUnauthorizedClient.WriteError(w)
		return
	}

	sub := r.PostForm.Get("sub")
	if sub == "" {
		writeServiceError(w, r, "api/subject", service.MissingParameter("sub").WithClient(client.ClientID))
		return
	}

	user, err := h.Engine.LookupSubject(ctx, client, sub)
	if errors.Is(err, service.ErrSubjectNotFound) {
		authsdk.ErrSubjectNotFound.WriteError(w)
		return
	}
	if err != nil {
		log.Error("subject lookup failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SubjectResponse{UUID: user.UUIDHex()})
}
