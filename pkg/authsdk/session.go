package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session represents an authenticated session with automatic token refresh.
// All Session methods automatically handle token expiration and refresh when needed.
type Session struct {
	client *SDKClient
	creds  Credentials

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	idToken      string
	expiresAt    time.Time
}

// Revoke revokes the current refresh token, invalidating this session.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	_, err := s.client.RevokeToken(ctx, s.creds, refreshToken, "refresh_token")
	return err
}

// UserInfo returns the claims of the session user.
func (s *Session) UserInfo(ctx context.Context) (UserInfoResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetUserInfo(ctx, token)
}

// newSession creates a new authenticated session from a token response.
func newSession(client *SDKClient, creds Credentials, tokenResp *TokenResponse) *Session {
	s := &Session{client: client, creds: creds}
	s.store(tokenResp)
	return s
}

// store records tokenResp. Access tokens are considered expired one second
// early since the provider issues short lived ones.
func (s *Session) store(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		s.refreshToken = tokenResp.RefreshToken
	}
	if tokenResp.IDToken != "" {
		s.idToken = tokenResp.IDToken
	}
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Second)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	// Token expired, need to refresh
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.RefreshGrant(ctx, s.creds, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(tokenResp)

	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer using the Session methods which handle refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// IDToken returns the last ID token received.
func (s *Session) IDToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken
}
