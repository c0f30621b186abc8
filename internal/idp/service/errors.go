package service

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OAuth2 / OIDC error codes.
const (
	CodeInvalidRequest          = "invalid_request"
	CodeInvalidClient           = "invalid_client"
	CodeInvalidGrant            = "invalid_grant"
	CodeInvalidScope            = "invalid_scope"
	CodeInvalidToken            = "invalid_token"
	CodeUnauthorizedClient      = "unauthorized_client"
	CodeUnsupportedResponseType = "unsupported_response_type"
	CodeAccessDenied            = "access_denied"
	CodeLoginRequired           = "login_required"
	CodeInteractionRequired     = "interaction_required"
	CodeInvalidOrigin           = "invalid_origin"
	CodeServerError             = "server_error"
)

// ErrSubjectUnavailable is returned when the sector of a pairwise client
// cannot be resolved.
var ErrSubjectUnavailable = errors.New("service: subject cannot be computed for client")

// OIDCError is a protocol failure. Handlers render it as JSON or as an error
// redirect to the relying party.
type OIDCError struct {
	Code        string
	Description string
	Status      int

	// ClientID is the client_id of the authenticated client, if any.
	ClientID string

	// ExtraInfo is logged but never sent.
	ExtraInfo string

	// ShowMessage is false for expected user-driven outcomes, which are
	// logged at INFO instead of WARN.
	ShowMessage bool
}

func (e *OIDCError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// WithClient records the client the error is reported for.
func (e *OIDCError) WithClient(clientID string) *OIDCError {
	e.ClientID = clientID
	return e
}

// WithStatus overrides the HTTP status.
func (e *OIDCError) WithStatus(status int) *OIDCError {
	e.Status = status
	return e
}

// Body is the JSON error document.
func (e *OIDCError) Body() map[string]string {
	body := map[string]string{"error": e.Code}
	if e.Description != "" {
		body["error_description"] = e.Description
	}
	if e.ClientID != "" {
		body["client_id"] = e.ClientID
	}
	return body
}

func newError(code string, showMessage bool, format string, args ...any) *OIDCError {
	desc := format
	if len(args) > 0 {
		desc = fmt.Sprintf(format, args...)
	}
	return &OIDCError{Code: code, Description: desc, Status: http.StatusBadRequest, ShowMessage: showMessage}
}

func InvalidRequest(format string, args ...any) *OIDCError {
	return newError(CodeInvalidRequest, true, format, args...)
}

func MissingParameter(name string) *OIDCError {
	return InvalidRequest(`Missing parameter "%s"`, name)
}

func InvalidClient(format string, args ...any) *OIDCError {
	return newError(CodeInvalidClient, true, format, args...)
}

func InvalidGrant(format string, args ...any) *OIDCError {
	return newError(CodeInvalidGrant, true, format, args...)
}

func InvalidScope(format string, args ...any) *OIDCError {
	return newError(CodeInvalidScope, true, format, args...)
}

func InvalidToken(format string, args ...any) *OIDCError {
	return newError(CodeInvalidToken, true, format, args...)
}

func UnauthorizedClient(format string, args ...any) *OIDCError {
	return newError(CodeUnauthorizedClient, true, format, args...)
}

func UnsupportedResponseType(format string, args ...any) *OIDCError {
	return newError(CodeUnsupportedResponseType, true, format, args...)
}

func AccessDenied(format string, args ...any) *OIDCError {
	return newError(CodeAccessDenied, false, format, args...)
}

func LoginRequired(format string, args ...any) *OIDCError {
	return newError(CodeLoginRequired, false, format, args...)
}

func InteractionRequired(format string, args ...any) *OIDCError {
	return newError(CodeInteractionRequired, false, format, args...)
}

// RedirectError is an authorize endpoint failure discovered after the
// redirect URI was validated, so it is delivered to the relying party.
type RedirectError struct {
	*OIDCError
	RedirectURI string
	State       *string
	UseFragment bool
}

func (e *RedirectError) Unwrap() error { return e.OIDCError }

// Location is the redirect target carrying error, error_description and
// state, in the fragment for implicit clients.
func (e *RedirectError) Location() string {
	params := url.Values{}
	params.Set("error", e.Code)
	params.Set("error_description", e.Description)
	if e.State != nil {
		params.Set("state", *e.State)
	}
	if e.UseFragment {
		return e.RedirectURI + "#" + params.Encode()
	}
	return appendQuery(e.RedirectURI, params)
}

// appendQuery merges params into the query string of rawURL.
func appendQuery(rawURL string, params url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + params.Encode()
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}
