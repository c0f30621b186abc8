package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// ErrInvalidPostLogoutURI is returned when no client accepts the
// post_logout_redirect_uri of a logout request.
var ErrInvalidPostLogoutURI = errors.New("service: invalid post logout URI")

// LoginRequest authenticates a browser.
type LoginRequest struct {
	Username string
	Password string
	OUSlug   string
	// Nonce is remembered so an ID token carrying it gets acr "1".
	Nonce string
	How   string
}

// Login authenticates a user and opens a browser session.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (domain.Session, error) {
	var ouID string
	if req.OUSlug != "" {
		ou, err := e.Store.Users().GetOUBySlug(ctx, req.OUSlug)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidCredentials
		}
		if err != nil {
			return domain.Session{}, fmt.Errorf("load ou: %w", err)
		}
		ouID = ou.ID
	}
	user, err := e.Authenticate(ctx, req.Username, req.Password, ouID)
	if err != nil {
		return domain.Session{}, err
	}

	key, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, fmt.Errorf("generate session key: %w", err)
	}
	how := req.How
	if how == "" {
		how = "password"
	}
	now := e.Now()
	session := domain.Session{
		Key:          key,
		UserID:       user.ID,
		AuthTime:     now,
		AuthNonce:    req.Nonce,
		AuthHow:      how,
		ExpiresAt:    now.Add(e.cfg.SessionLifetime),
		OIDCSessions: map[string]domain.FrontchannelEntry{},
		CreatedAt:    now,
	}
	if err := e.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	slogx.FromContext(ctx).Info("idp_oidc: user logged in", slog.String("user_id", user.ID), slog.String("how", how))
	return session, nil
}

// CurrentSession returns the live session key names, or nil.
func (e *Engine) CurrentSession(ctx context.Context, key string) (*domain.Session, error) {
	if key == "" {
		return nil, nil
	}
	s, err := e.Store.Sessions().GetSession(ctx, key, e.Now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}

// LogoutRequest ends a browser session.
type LogoutRequest struct {
	SessionKey            string
	PostLogoutRedirectURI string
	State                 string
}

// LogoutResult lists the front-channel logout pages the browser must load
// before following RedirectURI.
type LogoutResult struct {
	RedirectURI  string                     `json:"redirect_uri,omitempty"`
	Frontchannel []domain.FrontchannelEntry `json:"frontchannel"`
}

// Logout ends the session and returns what the browser must notify. When
// a post-logout URI is given it must belong to a client, otherwise the
// session is left untouched and ErrInvalidPostLogoutURI returned.
func (e *Engine) Logout(ctx context.Context, req LogoutRequest) (LogoutResult, error) {
	res := LogoutResult{Frontchannel: []domain.FrontchannelEntry{}}
	if req.PostLogoutRedirectURI != "" {
		client, ok, err := e.FindClientByPostLogoutRedirectURI(ctx, req.PostLogoutRedirectURI)
		if err != nil {
			return res, err
		}
		if !ok {
			return res, ErrInvalidPostLogoutURI
		}
		res.RedirectURI = req.PostLogoutRedirectURI
		if req.State != "" {
			res.RedirectURI = appendQuery(res.RedirectURI, url.Values{"state": {req.State}})
		}
		slogx.FromContext(ctx).Info("idp_oidc: logout requested by service", slog.String("client_id", client.ClientID))
	}

	session, err := e.CurrentSession(ctx, req.SessionKey)
	if err != nil || session == nil {
		return res, err
	}
	for _, entry := range session.OIDCSessions {
		res.Frontchannel = append(res.Frontchannel, entry)
	}
	sort.Slice(res.Frontchannel, func(i, j int) bool {
		return res.Frontchannel[i].FrontchannelLogoutURI < res.Frontchannel[j].FrontchannelLogoutURI
	})
	if err := e.Store.Sessions().DeleteSession(ctx, session.Key); err != nil && !errors.Is(err, store.ErrNotFound) {
		return res, fmt.Errorf("delete session: %w", err)
	}
	return res, nil
}
