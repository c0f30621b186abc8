package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
)

var (
	ErrPKCERequiresCodeFlow   = errors.New("PKCE can only be used with the authorization code flow")
	ErrPairwiseNeedsSector    = errors.New("redirect URIs must have the same domain or you must define a sector identifier URI if you want to use pairwise identifiers")
	ErrAlwaysSaveNeedsConsent = errors.New("always saving authorizations requires an authorization mode")
)

// ValidateClient checks the client configuration invariants and returns the
// client normalised: offline_access is added to the scope of clients using
// refresh tokens.
func (e *Engine) ValidateClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	client.RedirectURIs = strings.Join(client.RedirectURIList(), "\n")
	client.PostLogoutRedirectURIs = strings.Join(client.PostLogoutRedirectURIList(), "\n")

	if client.PKCECodeChallenge && client.AuthorizationFlow != domain.FlowAuthorizationCode {
		return client, ErrPKCERequiresCodeFlow
	}
	if client.AlwaysSaveAuthorization && client.AuthorizationMode == domain.AuthorizationNone {
		return client, ErrAlwaysSaveNeedsConsent
	}
	if client.IdentifierPolicy.IsPairwise() {
		if _, err := e.Sectors.resolve(ctx, client); err != nil {
			return client, fmt.Errorf("%w: %w", ErrPairwiseNeedsSector, err)
		}
	}
	if client.UsesRefreshTokens && !client.ScopeSet().Has("offline_access") {
		client.Scope = strings.TrimSpace(client.Scope + " offline_access")
	}
	return client, nil
}

// UserData is what the client may know about user: its sub, once the user
// has a live authorization for the client.
func (e *Engine) UserData(ctx context.Context, client domain.Client, user domain.User) (map[string]any, error) {
	authzs, err := e.Store.Authorizations().ListAuthorizations(ctx, client.AuthorizationTarget(), user.ID)
	if err != nil {
		return nil, err
	}
	now := e.Now()
	for _, a := range authzs {
		if !a.ExpiresAt.Before(now) {
			sub, err := e.MakeSub(ctx, client, user, nil)
			if err != nil {
				return nil, err
			}
			return map[string]any{"id": sub}, nil
		}
	}
	return map[string]any{}, nil
}

// FindClientByPostLogoutRedirectURI returns the first client whose
// post-logout patterns accept uri.
func (e *Engine) FindClientByPostLogoutRedirectURI(ctx context.Context, uri string) (domain.Client, bool, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return domain.Client{}, false, nil
	}

	var fragment string
	switch {
	case parsed.Host != "":
		fragment = parsed.Host
	case strings.Contains(parsed.Scheme, "."):
		// custom application scheme
		fragment = parsed.Scheme
	default:
		return domain.Client{}, false, nil
	}

	candidates, err := e.Store.Clients().ListClientsByPostLogoutURI(ctx, fragment)
	if err != nil {
		return domain.Client{}, false, err
	}
	for _, c := range candidates {
		if e.ValidatePostLogoutRedirectURI(c, uri) == nil {
			return c, true, nil
		}
	}
	return domain.Client{}, false, nil
}

// ErrSubjectNotFound is returned by LookupSubject for unknown subs.
var ErrSubjectNotFound = errors.New("service: subject not found")

// LookupSubject translates a sub issued to client back to the user.
func (e *Engine) LookupSubject(ctx context.Context, client domain.Client, sub string) (domain.User, error) {
	var (
		user domain.User
		err  error
	)
	switch client.IdentifierPolicy {
	case domain.PolicyPairwiseReversible:
		id, ok := e.ReverseSub(ctx, client, sub)
		if !ok {
			return domain.User{}, ErrSubjectNotFound
		}
		user, err = e.Store.Users().GetUserByUUID(ctx, id.String())
	case domain.PolicyUUID:
		if _, perr := uuid.Parse(sub); perr != nil {
			return domain.User{}, ErrSubjectNotFound
		}
		user, err = e.Store.Users().GetUserByUUID(ctx, sub)
	case domain.PolicyEmail:
		user, err = e.Store.Users().GetUserByEmail(ctx, sub)
	default:
		return domain.User{}, ErrSubjectNotFound
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrSubjectNotFound
	}
	return user, err
}
