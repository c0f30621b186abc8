package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// AuthenticateAccessToken resolves a bearer value to a valid access token.
// A session-bound token is only valid while its session is authenticated as
// the token user.
func (e *Engine) AuthenticateAccessToken(ctx context.Context, raw string) (domain.AccessToken, error) {
	token, err := e.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccessToken{}, InvalidToken("Token unknown").WithStatus(http.StatusUnauthorized)
	}
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("load access token: %w", err)
	}

	expired := InvalidToken("Token expired or user disconnected").WithStatus(http.StatusUnauthorized)
	if token.ExpiresAt != nil && token.ExpiresAt.Before(e.Now()) {
		return domain.AccessToken{}, expired
	}
	if token.SessionKey != "" {
		_, ok, err := e.liveSession(ctx, token.SessionKey, token.UserID)
		if err != nil {
			return domain.AccessToken{}, err
		}
		if !ok {
			return domain.AccessToken{}, expired
		}
	}
	return token, nil
}

// UserInfo returns the claims the access token raw grants access to.
func (e *Engine) UserInfo(ctx context.Context, raw string) (map[string]any, error) {
	token, err := e.AuthenticateAccessToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	client, err := e.Store.Clients().GetClientByID(ctx, token.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	user, err := e.Store.Users().GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	profile, err := e.loadProfile(ctx, token.UserID, token.ProfileID)
	if err != nil {
		return nil, err
	}
	return e.Claims.UserInfo(ctx, client, user, token.ScopeSet(), profile)
}
