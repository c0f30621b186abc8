package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// ViewRestriction can hold an authenticated user back before an
// authorization completes, for example until their profile is complete.
type ViewRestriction interface {
	// Check returns the URL the user must visit first, or "" when the user
	// may continue.
	Check(ctx context.Context, client domain.Client, user domain.User) (string, error)
}

// AuthorizeRequest carries the authorize endpoint parameters together with
// the browser session, if any.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               *string
	Nonce               *string
	Prompt              string
	LoginHint           string
	MaxAge              string
	CodeChallenge       string
	CodeChallengeMethod string

	// Cancel is set when the user cancelled the login.
	Cancel bool

	// Session is nil for anonymous requests.
	Session *domain.Session

	// Consent is the answer posted from the consent step.
	Consent *ConsentAnswer
}

// ConsentAnswer is the user decision on a consent prompt.
type ConsentAnswer struct {
	Accept        bool
	DoNotAskAgain bool
	ProfileID     string
}

// OutcomeKind tells the handler what to do with an AuthorizeOutcome.
type OutcomeKind int

const (
	// OutcomeRedirect sends the user back to the relying party.
	OutcomeRedirect OutcomeKind = iota + 1
	// OutcomeLogin asks the user to authenticate and come back.
	OutcomeLogin
	// OutcomeConsent asks the user to accept the requested scopes.
	OutcomeConsent
	// OutcomeRestricted sends the user to the page a ViewRestriction named.
	OutcomeRestricted
)

// AuthorizeOutcome is a successful (non error) authorize step.
type AuthorizeOutcome struct {
	Kind     OutcomeKind
	Location string
	Login    *LoginPrompt
	Consent  *ConsentPrompt
}

type LoginPrompt struct {
	Nonce     *string
	LoginHint []string
}

// ConsentPrompt describes the consent page to render.
type ConsentPrompt struct {
	ClientID              string
	ClientName            string
	Scopes                []string
	NeedsScopeValidation  bool
	HasSelectableProfiles bool
	ProfileTypes          []string
}

// Authorize drives the authorize endpoint.
//
// Failures found before the redirect URI is validated are returned as
// *OIDCError and must be shown locally. Every later failure is a
// *RedirectError to be delivered to the relying party, in the fragment for
// implicit clients.
//
// On success the outcome is one of:
//   - OutcomeRedirect with the code (code flow) or the tokens (implicit flow)
//   - OutcomeLogin when the user must authenticate first
//   - OutcomeConsent when the user must accept the scopes or pick a profile
//   - OutcomeRestricted when a ViewRestriction holds the user back
func (e *Engine) Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeOutcome, error) {
	if req.ClientID == "" {
		return AuthorizeOutcome{}, MissingParameter("client_id")
	}
	if req.RedirectURI == "" {
		return AuthorizeOutcome{}, MissingParameter("redirect_uri")
	}
	client, err := e.Store.Clients().GetClientByClientID(ctx, req.ClientID)
	if errors.Is(err, store.ErrNotFound) {
		return AuthorizeOutcome{}, InvalidRequest(`Unknown client identifier: "%s"`, req.ClientID)
	}
	if err != nil {
		return AuthorizeOutcome{}, fmt.Errorf("load client: %w", err)
	}
	if err := e.ValidateRedirectURI(client, req.RedirectURI); err != nil {
		return AuthorizeOutcome{}, InvalidRequest(`Redirect URI "%s" is unknown.`, req.RedirectURI).WithClient(client.ClientID)
	}

	out, err := e.authorizeForClient(ctx, client, req)
	var oerr *OIDCError
	if errors.As(err, &oerr) {
		return AuthorizeOutcome{}, &RedirectError{
			OIDCError:   oerr.WithClient(client.ClientID),
			RedirectURI: req.RedirectURI,
			State:       req.State,
			UseFragment: client.AuthorizationFlow == domain.FlowImplicit,
		}
	}
	return out, err
}

func (e *Engine) authorizeForClient(ctx context.Context, client domain.Client, req AuthorizeRequest) (AuthorizeOutcome, error) {
	log := slogx.FromContext(ctx)
	e.Observer.OnEvent(ctx, Event{Name: EventSSORequest, ClientID: client.ClientID})

	prompt := domain.ParseScopes(req.Prompt)
	loginPrompt := AuthorizeOutcome{
		Kind:  OutcomeLogin,
		Login: &LoginPrompt{Nonce: req.Nonce, LoginHint: strings.Fields(req.LoginHint)},
	}

	if req.ResponseType == "" {
		return AuthorizeOutcome{}, MissingParameter("response_type")
	}
	responseTypes := domain.ParseScopes(req.ResponseType)
	switch client.AuthorizationFlow {
	case domain.FlowResourceOwnerCred:
		return AuthorizeOutcome{}, InvalidRequest("Client is configured for resource owner password credentials grant, authorize endpoint is not usable")
	case domain.FlowAuthorizationCode:
		if req.ResponseType != "code" {
			return AuthorizeOutcome{}, UnsupportedResponseType(`Response type must be "code"`)
		}
	case domain.FlowImplicit:
		if !responseTypes.Has("id_token") || !responseTypes.SubsetOf(domain.NewScopeSet("id_token", "token")) {
			return AuthorizeOutcome{}, UnsupportedResponseType(`Response type must be "id_token token" or "id_token"`)
		}
	default:
		return AuthorizeOutcome{}, fmt.Errorf("service: unknown authorization flow %d", client.AuthorizationFlow)
	}

	if req.Scope == "" {
		return AuthorizeOutcome{}, MissingParameter("scope")
	}
	scopes := domain.ParseScopes(req.Scope)
	if !scopes.Has("openid") {
		return AuthorizeOutcome{}, InvalidScope(`Scope must contain "openid", received "%s"`, strings.Join(scopes.Sorted(), ", "))
	}
	if allowed := e.AllowedScopes(client); !scopes.SubsetOf(allowed) {
		return AuthorizeOutcome{}, InvalidScope(`Scope may contain "%s" scope(s), received "%s"`,
			strings.Join(allowed.Sorted(), ", "), strings.Join(scopes.Sorted(), ", "))
	}

	maxAge := -1
	if req.MaxAge != "" {
		n, err := strconv.Atoi(req.MaxAge)
		if err != nil || n < 0 {
			return AuthorizeOutcome{}, InvalidRequest(`Parameter "max_age" must be a positive integer`)
		}
		maxAge = n
	}

	challenge, challengeMethod, oerr := pkceRequest(client, req.ResponseType, req.CodeChallenge, req.CodeChallengeMethod)
	if oerr != nil {
		return AuthorizeOutcome{}, oerr
	}

	if req.Cancel {
		return AuthorizeOutcome{}, AccessDenied("Authentication cancelled by user")
	}

	if req.Session == nil || prompt.Has("login") {
		if prompt.Has("none") {
			return AuthorizeOutcome{}, LoginRequired(`Login is required but prompt parameter is "none"`)
		}
		return loginPrompt, nil
	}
	session := req.Session
	user, err := e.Store.Users().GetUserByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		if prompt.Has("none") {
			return AuthorizeOutcome{}, LoginRequired(`Login is required but prompt parameter is "none"`)
		}
		return loginPrompt, nil
	}
	if err != nil {
		return AuthorizeOutcome{}, fmt.Errorf("load user: %w", err)
	}

	if e.Restriction != nil {
		target, err := e.Restriction.Check(ctx, client, user)
		if err != nil {
			return AuthorizeOutcome{}, fmt.Errorf("view restriction: %w", err)
		}
		if target != "" {
			if prompt.Has("none") {
				return AuthorizeOutcome{}, InteractionRequired(`User profile is not complete but prompt parameter is "none"`)
			}
			return AuthorizeOutcome{Kind: OutcomeRestricted, Location: target}, nil
		}
	}

	iat := e.Now()
	if maxAge >= 0 && iat.Sub(session.AuthTime) >= time.Duration(maxAge)*time.Second {
		if prompt.Has("none") {
			return AuthorizeOutcome{}, LoginRequired(`Login is required because of max_age, but prompt parameter is "none"`)
		}
		return loginPrompt, nil
	}

	var (
		profile *domain.Profile
		authzID string
	)
	if client.AuthorizationMode != domain.AuthorizationNone || prompt.Has("consent") {
		consent, err := e.consent(ctx, client, user, scopes, prompt.Has("consent"), req.Consent, iat)
		if err != nil {
			return AuthorizeOutcome{}, err
		}
		if consent.prompt != nil {
			return AuthorizeOutcome{Kind: OutcomeConsent, Consent: consent.prompt}, nil
		}
		profile, authzID = consent.profile, consent.authorizationID
		if consent.saved {
			log.Info("idp_oidc: authorized scopes saved for service",
				slog.String("client_id", client.ClientID), slog.String("scopes", scopes.String()))
		}
	}

	var location string
	if req.ResponseType == "code" {
		raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return AuthorizeOutcome{}, fmt.Errorf("generate code: %w", err)
		}
		code := domain.Code{
			ID:                  idx.New().String(),
			CodeHash:            cryptox.FingerprintToken(raw),
			ClientID:            client.ID,
			UserID:              user.ID,
			Scopes:              scopes.String(),
			State:               req.State,
			Nonce:               req.Nonce,
			RedirectURI:         req.RedirectURI,
			SessionKey:          session.Key,
			AuthTime:            session.AuthTime,
			CodeChallenge:       challenge,
			CodeChallengeMethod: challengeMethod,
			AuthorizationID:     authzID,
			ExpiresAt:           iat.Add(e.cfg.CodeTTL),
			CreatedAt:           iat,
		}
		if profile != nil {
			code.ProfileID = profile.ID
		}
		if err := e.Store.Codes().CreateCode(ctx, code); err != nil {
			return AuthorizeOutcome{}, fmt.Errorf("create code: %w", err)
		}
		log.Info("idp_oidc: sending code for service",
			slog.String("code_id", code.ID), slog.String("client_id", client.ClientID),
			slog.String("scopes", code.Scopes))

		params := url.Values{"code": {raw}, "iss": {e.cfg.Issuer}}
		if req.State != nil {
			params.Set("state", *req.State)
		}
		location = appendQuery(req.RedirectURI, params)
	} else {
		if profile == nil && req.Consent != nil && req.Consent.ProfileID != "" {
			if profile, err = e.loadProfile(ctx, user.ID, req.Consent.ProfileID); err != nil {
				return AuthorizeOutcome{}, err
			}
		}
		params, err := e.implicitResponse(ctx, client, user, *session, scopes, profile, authzID, req, iat, responseTypes.Has("token"))
		if err != nil {
			return AuthorizeOutcome{}, err
		}
		location = req.RedirectURI + "#" + params.Encode()
	}

	e.Observer.OnEvent(ctx, Event{Name: EventSSOSuccess, ClientID: client.ClientID, UserID: user.ID, How: session.AuthHow})
	if err := e.AddOIDCSession(ctx, session, client); err != nil {
		return AuthorizeOutcome{}, fmt.Errorf("register front-channel logout: %w", err)
	}
	return AuthorizeOutcome{Kind: OutcomeRedirect, Location: location}, nil
}

// implicitResponse mints the fragment parameters of an implicit flow
// redirect: an ID token, plus an access token when needToken is set.
func (e *Engine) implicitResponse(
	ctx context.Context,
	client domain.Client,
	user domain.User,
	session domain.Session,
	scopes domain.ScopeSet,
	profile *domain.Profile,
	authzID string,
	req AuthorizeRequest,
	iat time.Time,
	needToken bool,
) (url.Values, error) {
	params := url.Values{}

	if needToken {
		token := domain.AccessToken{
			ID:              idx.New().String(),
			ClientID:        client.ID,
			UserID:          user.ID,
			Scopes:          scopes.String(),
			SessionKey:      session.Key,
			AuthorizationID: authzID,
			CreatedAt:       iat,
		}
		expiresIn := session.ExpiryAge(iat)
		if client.AccessTokenDuration != nil {
			expiresIn = *client.AccessTokenDuration
			exp := iat.Add(expiresIn)
			token.ExpiresAt = &exp
		}
		if profile != nil {
			token.ProfileID = profile.ID
		}
		raw, err := e.createAccessToken(ctx, token)
		if err != nil {
			return nil, err
		}
		params.Set("access_token", raw)
		params.Set("token_type", "Bearer")
		params.Set("expires_in", strconv.FormatInt(int64(expiresIn.Seconds()), 10))
	}

	claims, err := e.Claims.UserInfo(ctx, client, user, scopes, profile)
	if err != nil {
		return nil, err
	}
	claims["iss"] = e.cfg.Issuer
	claims["aud"] = client.ClientID
	claims["exp"] = iat.Unix() + e.IDTokenDuration(client)
	claims["iat"] = iat.Unix()
	claims["auth_time"] = session.AuthTime.Unix()
	claims["acr"] = acr(req.Nonce, session)
	claims["sid"] = e.SessionID(session.Key, client)
	if req.Nonce != nil {
		claims["nonce"] = *req.Nonce
	}
	idToken, err := e.SignIDToken(client, claims)
	if err != nil {
		return nil, fmt.Errorf("sign id token: %w", err)
	}
	params.Set("id_token", idToken)
	if req.State != nil {
		params.Set("state", *req.State)
	}
	return params, nil
}

type consentResult struct {
	prompt          *ConsentPrompt
	profile         *domain.Profile
	authorizationID string
	saved           bool
}

// consent decides whether prior authorizations cover scopes and, when they
// do not, either asks for consent or applies the posted answer.
func (e *Engine) consent(
	ctx context.Context,
	client domain.Client,
	user domain.User,
	scopes domain.ScopeSet,
	forced bool,
	answer *ConsentAnswer,
	iat time.Time,
) (consentResult, error) {
	var res consentResult
	target := client.AuthorizationTarget()
	if target.ID == "" {
		return res, ErrSectorNoOU
	}
	authzs := e.Store.Authorizations()

	var live []domain.Authorization
	if forced {
		if err := authzs.DeleteUserAuthorizations(ctx, target, user.ID); err != nil {
			return res, fmt.Errorf("clear authorizations: %w", err)
		}
	} else {
		all, err := authzs.ListAuthorizations(ctx, target, user.ID)
		if err != nil {
			return res, fmt.Errorf("list authorizations: %w", err)
		}
		for _, a := range all {
			if !a.ExpiresAt.Before(iat) {
				live = append(live, a)
			}
		}
	}

	authorized := make(domain.ScopeSet)
	var authorizedProfileID string
	for _, a := range live {
		authorized = authorized.Union(a.ScopeSet())
		if authorizedProfileID == "" && a.ProfileID != "" {
			authorizedProfileID = a.ProfileID
		}
	}

	profiles, err := e.Store.Users().ListProfiles(ctx, user.ID)
	if err != nil {
		return res, fmt.Errorf("list profiles: %w", err)
	}
	selectable := len(profiles) > 0 && authorizedProfileID == ""
	if !selectable && authorizedProfileID != "" {
		if res.profile, err = e.loadProfile(ctx, user.ID, authorizedProfileID); err != nil {
			return res, err
		}
	}

	needsScopes := !scopes.SubsetOf(authorized)
	if !needsScopes && !(selectable && client.ActivateUserProfiles) {
		return res, nil
	}

	if answer == nil {
		types := make(domain.ScopeSet)
		for _, p := range profiles {
			types[p.ProfileType] = struct{}{}
		}
		res.prompt = &ConsentPrompt{
			ClientID:              client.ClientID,
			ClientName:            client.Name,
			Scopes:                scopes.Without("openid").Sorted(),
			NeedsScopeValidation:  needsScopes,
			HasSelectableProfiles: selectable,
			ProfileTypes:          types.Sorted(),
		}
		return res, nil
	}

	if answer.ProfileID != "" {
		for i := range profiles {
			if profiles[i].ID == answer.ProfileID {
				res.profile = &profiles[i]
				break
			}
		}
	}
	if !answer.Accept {
		e.Observer.OnEvent(ctx, Event{Name: EventSSORefusal, ClientID: client.ClientID, UserID: user.ID, Scopes: scopes.Sorted()})
		return res, AccessDenied("User did not consent")
	}
	if !answer.DoNotAskAgain && !client.AlwaysSaveAuthorization && !scopes.Has("offline_access") {
		return res, nil
	}

	var obsolete []string
	for _, a := range live {
		if a.ScopeSet().SubsetOf(scopes) {
			obsolete = append(obsolete, a.ID)
		}
	}
	days := client.AuthorizationDefaultDuration
	if days <= 0 {
		days = DefaultAuthorizationDays
	}
	authz := domain.Authorization{
		ID:        idx.New().String(),
		Target:    target,
		UserID:    user.ID,
		Scopes:    scopes.String(),
		ExpiresAt: iat.AddDate(0, 0, days),
		CreatedAt: iat,
	}
	if res.profile != nil {
		authz.ProfileID = res.profile.ID
	}
	if err := authzs.CreateAuthorization(ctx, authz); err != nil {
		return res, fmt.Errorf("create authorization: %w", err)
	}
	if len(obsolete) > 0 {
		if err := authzs.DeleteAuthorizations(ctx, obsolete...); err != nil {
			return res, fmt.Errorf("prune authorizations: %w", err)
		}
	}
	e.Observer.OnEvent(ctx, Event{Name: EventSSOAuthorization, ClientID: client.ClientID, UserID: user.ID, Scopes: scopes.Sorted()})
	res.authorizationID = authz.ID
	res.saved = true
	return res, nil
}

// loadProfile returns the user's profile, or nil when id is empty or does
// not name one of the user's profiles.
func (e *Engine) loadProfile(ctx context.Context, userID, id string) (*domain.Profile, error) {
	if id == "" {
		return nil, nil
	}
	p, err := e.Store.Users().GetProfile(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}
