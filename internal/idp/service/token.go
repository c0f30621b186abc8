package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

// Grant types accepted by the token endpoint.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
)

// TokenRequest is a decoded token endpoint request.
type TokenRequest struct {
	GrantType string
	Client    ClientCredentials

	// RemoteIP keys the password grant IP limiter.
	RemoteIP string
	// FormEncoded reports an application/x-www-form-urlencoded body.
	FormEncoded bool

	// authorization_code
	Code         string
	RedirectURI  string
	CodeVerifier string

	// password
	Username  string
	Password  string
	Scope     *string
	ProfileID string
	OUSlug    *string

	// refresh_token
	RefreshToken string
}

// Token dispatches req on its grant type.
func (e *Engine) Token(ctx context.Context, req TokenRequest) (domain.TokenResponse, error) {
	switch req.GrantType {
	case GrantPassword:
		return e.PasswordGrant(ctx, req)
	case GrantAuthorizationCode:
		return e.ExchangeCode(ctx, req)
	case GrantRefreshToken:
		return e.Refresh(ctx, req)
	}
	return domain.TokenResponse{}, InvalidRequest("grant_type must be either authorization_code, password or refresh_token")
}

// ExchangeCode redeems an authorization code for an access token, an ID
// token and, for clients using them, a refresh token.
//
// A code is consumed only after every check passed, and at most once: a
// concurrent second exchange fails with invalid_grant.
func (e *Engine) ExchangeCode(ctx context.Context, req TokenRequest) (domain.TokenResponse, error) {
	client, err := e.AuthenticateClient(ctx, req.Client)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	if req.Code == "" {
		return domain.TokenResponse{}, MissingParameter("code").WithClient(client.ClientID)
	}

	now := e.Now()
	codes := e.Store.Codes()
	code, err := codes.GetCodeByHash(ctx, cryptox.FingerprintToken(req.Code), now)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenResponse{}, InvalidGrant("Code is unknown or has expired.").WithClient(client.ClientID)
	}
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("load code: %w", err)
	}
	if code.ClientID != client.ID {
		return domain.TokenResponse{}, InvalidGrant("Code was issued to a different client.").WithClient(client.ClientID)
	}
	session, ok, err := e.liveSession(ctx, code.SessionKey, code.UserID)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	if !ok {
		return domain.TokenResponse{}, InvalidGrant("User is disconnected or session was lost.").WithClient(client.ClientID)
	}
	if code.RedirectURI != req.RedirectURI {
		return domain.TokenResponse{}, InvalidGrant("Redirect_uri does not match the code.").WithClient(client.ClientID)
	}
	if oerr := VerifyCodeVerifier(code, req.CodeVerifier); oerr != nil {
		return domain.TokenResponse{}, oerr.WithClient(client.ClientID)
	}

	if err := codes.ConsumeCode(ctx, code.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenResponse{}, InvalidGrant("Code is unknown or has expired.").WithClient(client.ClientID)
		}
		return domain.TokenResponse{}, fmt.Errorf("consume code: %w", err)
	}

	user, err := e.Store.Users().GetUserByID(ctx, code.UserID)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("load user: %w", err)
	}
	profile, err := e.loadProfile(ctx, code.UserID, code.ProfileID)
	if err != nil {
		return domain.TokenResponse{}, err
	}

	expiresIn := session.ExpiryAge(now)
	if client.AccessTokenDuration != nil {
		expiresIn = *client.AccessTokenDuration
	}
	exp := now.Add(expiresIn)
	accessRaw, err := e.createAccessToken(ctx, domain.AccessToken{
		ID:              idx.New().String(),
		ClientID:        client.ID,
		UserID:          user.ID,
		Scopes:          code.Scopes,
		SessionKey:      code.SessionKey,
		ProfileID:       code.ProfileID,
		AuthorizationID: code.AuthorizationID,
		ExpiresAt:       &exp,
		CreatedAt:       now,
	})
	if err != nil {
		return domain.TokenResponse{}, err
	}

	claims, err := e.Claims.UserInfo(ctx, client, user, code.ScopeSet(), profile)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	sub, err := e.MakeSub(ctx, client, user, profile)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	claims["iss"] = e.cfg.Issuer
	claims["sub"] = sub
	claims["aud"] = client.ClientID
	claims["exp"] = now.Unix() + e.IDTokenDuration(client)
	claims["iat"] = now.Unix()
	claims["auth_time"] = code.AuthTime.Unix()
	claims["acr"] = acr(code.Nonce, session)
	claims["sid"] = e.SessionID(session.Key, client)
	if code.Nonce != nil {
		claims["nonce"] = *code.Nonce
	}
	idToken, err := e.SignIDToken(client, claims)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("sign id token: %w", err)
	}

	resp := domain.TokenResponse{
		AccessToken: accessRaw,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn.Seconds()),
		IDToken:     idToken,
	}
	if client.ScopeSet().Has("offline_access") && client.UsesRefreshTokens {
		refreshExp := now.Add(e.cfg.RefreshTokenDuration)
		refreshRaw, refreshHash, err := mintToken()
		if err != nil {
			return domain.TokenResponse{}, err
		}
		err = e.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:              idx.New().String(),
			TokenHash:       refreshHash,
			ClientID:        client.ID,
			UserID:          user.ID,
			Scopes:          code.Scopes,
			ProfileID:       code.ProfileID,
			AuthorizationID: code.AuthorizationID,
			ExpiresAt:       &refreshExp,
			CreatedAt:       now,
		})
		if err != nil {
			return domain.TokenResponse{}, fmt.Errorf("create refresh token: %w", err)
		}
		resp.RefreshToken = refreshRaw
	}

	e.Observer.OnEvent(ctx, Event{Name: EventTokenIssued, ClientID: client.ClientID, UserID: user.ID, Grant: GrantAuthorizationCode, Scopes: code.ScopeSet().Sorted()})
	return resp, nil
}

// Refresh rotates a refresh token: tokens minted from it are expired, a new
// access token and a new refresh token are issued, and the used token is
// kept alive for the grace window so a client may retry.
func (e *Engine) Refresh(ctx context.Context, req TokenRequest) (domain.TokenResponse, error) {
	client, err := e.AuthenticateClient(ctx, req.Client)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	if !client.UsesRefreshTokens {
		return domain.TokenResponse{}, InvalidRequest("refresh_token grant type is not allowed for client %s", client.ClientID).WithClient(client.ClientID)
	}
	if req.RefreshToken == "" {
		return domain.TokenResponse{}, InvalidRequest("refresh_token parameter missing from token refresh request").WithClient(client.ClientID)
	}

	stale := InvalidRequest("invalid token refresh request, token is invalid or stale").WithClient(client.ClientID)
	used, err := e.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(req.RefreshToken), client.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenResponse{}, stale
	}
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("load refresh token: %w", err)
	}

	now := e.Now()
	if !used.IsValid(now) {
		return domain.TokenResponse{}, InvalidRequest("invalid refresh token, token has reached expiry").WithClient(client.ClientID)
	}

	// A refresh request carries no browser session to bind the access token
	// to, so without a client duration it lives for one session lifetime.
	expiresIn := e.cfg.SessionLifetime
	if client.AccessTokenDuration != nil {
		expiresIn = *client.AccessTokenDuration
	}
	accessExp := now.Add(expiresIn)
	refreshExp := now.Add(e.cfg.RefreshTokenDuration)

	// The grace window never extends a token already inside it. Rotation
	// claims the token by its rotation count, so of the requests that read
	// the same state only one gets through.
	usedExp := now.Add(e.cfg.RefreshGrace)
	if used.ExpiresAt != nil && used.ExpiresAt.Before(usedExp) {
		usedExp = *used.ExpiresAt
	}

	accessRaw, accessHash, err := mintToken()
	if err != nil {
		return domain.TokenResponse{}, err
	}
	refreshRaw, refreshHash, err := mintToken()
	if err != nil {
		return domain.TokenResponse{}, err
	}

	err = e.Store.RotateRefreshToken(ctx, store.Rotation{
		Used: used,
		AccessToken: domain.AccessToken{
			ID:              idx.New().String(),
			TokenHash:       accessHash,
			ClientID:        client.ID,
			UserID:          used.UserID,
			Scopes:          used.Scopes,
			ProfileID:       used.ProfileID,
			RefreshTokenID:  used.ID,
			AuthorizationID: used.AuthorizationID,
			ExpiresAt:       &accessExp,
			CreatedAt:       now,
		},
		RefreshToken: domain.RefreshToken{
			ID:              idx.New().String(),
			TokenHash:       refreshHash,
			ClientID:        client.ID,
			UserID:          used.UserID,
			Scopes:          used.Scopes,
			ProfileID:       used.ProfileID,
			RefreshTokenID:  used.ID,
			AuthorizationID: used.AuthorizationID,
			ExpiresAt:       &refreshExp,
			CreatedAt:       now,
		},
		Now:           now,
		UsedExpiresAt: usedExp,
	})
	if errors.Is(err, store.ErrConflict) {
		return domain.TokenResponse{}, stale
	}
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	e.Observer.OnEvent(ctx, Event{Name: EventTokenIssued, ClientID: client.ClientID, UserID: used.UserID, Grant: GrantRefreshToken})
	return domain.TokenResponse{
		AccessToken:  accessRaw,
		TokenType:    "Bearer",
		ExpiresIn:    int64(expiresIn.Seconds()),
		RefreshToken: refreshRaw,
	}, nil
}

// PasswordGrant implements the resource owner password credentials grant.
//
// Checks run in this order: the IP limit (without counting), client
// authentication (a failure counts against the IP), the client limit, the
// request shape, the per (username, client) backoff, then the credentials.
func (e *Engine) PasswordGrant(ctx context.Context, req TokenRequest) (domain.TokenResponse, error) {
	lim := e.Limiter
	ipLimited := func() error {
		return InvalidRequest(`Rate limit exceeded for IP address "%s"`, req.RemoteIP)
	}

	exceeded, err := lim.ipExceeded(ctx, req.RemoteIP)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("ip limiter: %w", err)
	}
	if exceeded {
		return domain.TokenResponse{}, ipLimited()
	}

	client, err := e.AuthenticateClient(ctx, req.Client)
	if err != nil {
		var oerr *OIDCError
		if errors.As(err, &oerr) && oerr.Code == CodeInvalidClient {
			exceeded, herr := lim.hitIP(ctx, req.RemoteIP)
			if herr != nil {
				return domain.TokenResponse{}, fmt.Errorf("ip limiter: %w", herr)
			}
			if exceeded {
				return domain.TokenResponse{}, ipLimited()
			}
		}
		return domain.TokenResponse{}, err
	}

	exceeded, err = lim.hitClient(ctx, client.ClientID)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("client limiter: %w", err)
	}
	if exceeded {
		return domain.TokenResponse{}, InvalidClient(`Rate limit of %s exceeded for client "%s"`, lim.clientRate(), client.ClientID).WithClient(client.ClientID)
	}

	if !req.FormEncoded {
		return domain.TokenResponse{}, InvalidRequest("Wrong content type. request content type must be 'application/x-www-form-urlencoded'").WithClient(client.ClientID)
	}
	if req.Username == "" || req.Password == "" {
		return domain.TokenResponse{}, InvalidRequest(`Request must bear both username and password as parameters using the "application/x-www-form-urlencoded" media type`).WithClient(client.ClientID)
	}
	if client.AuthorizationFlow != domain.FlowResourceOwnerCred {
		return domain.TokenResponse{}, UnauthorizedClient("Client is not configured for resource owner password credential grant").WithClient(client.ClientID)
	}

	backoffKeys := []string{req.Username, client.ClientID}
	wait, err := lim.wait(ctx, backoffKeys...)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("backoff: %w", err)
	}
	if wait > 0 {
		return domain.TokenResponse{}, InvalidRequest("Too many attempts with erroneous RO password, you must wait %d seconds to try again.", int64(math.Ceil(wait))).WithClient(client.ClientID)
	}

	var ouID string
	if req.OUSlug != nil {
		ou, err := e.Store.Users().GetOUBySlug(ctx, *req.OUSlug)
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenResponse{}, InvalidRequest(`Parameter "ou_slug" does not match an existing organizational unit`).WithClient(client.ClientID)
		}
		if err != nil {
			return domain.TokenResponse{}, fmt.Errorf("load ou: %w", err)
		}
		ouID = ou.ID
	}

	user, err := e.Authenticate(ctx, req.Username, req.Password, ouID)
	if errors.Is(err, ErrInvalidCredentials) {
		if ferr := lim.failure(ctx, backoffKeys...); ferr != nil {
			slogx.FromContext(ctx).Warn("idp_oidc: could not record password failure", slog.Any("error", ferr))
		}
		return domain.TokenResponse{}, AccessDenied("Invalid user credentials").WithClient(client.ClientID)
	}
	if err != nil {
		return domain.TokenResponse{}, err
	}

	scopes := client.ScopeSet()
	if req.Scope != nil {
		scopes = domain.ParseScopes(*req.Scope).Intersect(scopes)
	}
	if err := lim.success(ctx, backoffKeys...); err != nil {
		slogx.FromContext(ctx).Warn("idp_oidc: could not reset password backoff", slog.Any("error", err))
	}

	iat := e.Now()
	expiresIn := e.cfg.AccessTokenDuration
	if client.AccessTokenDuration != nil {
		expiresIn = *client.AccessTokenDuration
	}

	var profile *domain.Profile
	if req.ProfileID != "" {
		if !client.ActivateUserProfiles {
			return domain.TokenResponse{}, AccessDenied("User profile requested yet client does not manage profiles.").WithClient(client.ClientID)
		}
		if profile, err = e.loadProfile(ctx, user.ID, req.ProfileID); err != nil {
			return domain.TokenResponse{}, err
		}
		if profile == nil {
			return domain.TokenResponse{}, AccessDenied("Invalid profile").WithClient(client.ClientID)
		}
	}

	exp := iat.Add(expiresIn)
	token := domain.AccessToken{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		UserID:    user.ID,
		Scopes:    scopes.String(),
		ExpiresAt: &exp,
		CreatedAt: iat,
	}
	if profile != nil {
		token.ProfileID = profile.ID
	}
	accessRaw, err := e.createAccessToken(ctx, token)
	if err != nil {
		return domain.TokenResponse{}, err
	}

	claims, err := e.Claims.UserInfo(ctx, client, user, scopes, profile)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	claims["iss"] = e.cfg.Issuer
	claims["aud"] = client.ClientID
	claims["exp"] = iat.Unix() + e.IDTokenDuration(client)
	claims["iat"] = iat.Unix()
	claims["auth_time"] = iat.Unix()
	claims["acr"] = "0"
	idToken, err := e.SignIDToken(client, claims)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("sign id token: %w", err)
	}

	e.Observer.OnEvent(ctx, Event{Name: EventTokenIssued, ClientID: client.ClientID, UserID: user.ID, Grant: GrantPassword, Scopes: scopes.Sorted()})
	return domain.TokenResponse{
		AccessToken: accessRaw,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn.Seconds()),
		IDToken:     idToken,
	}, nil
}

// RevokeRequest is a decoded revocation request.
type RevokeRequest struct {
	Client    ClientCredentials
	Token     string
	TokenType string
}

// RevokeResponse is the revocation success body.
type RevokeResponse struct {
	Err int    `json:"err"`
	Msg string `json:"msg"`
}

// Revoke expires an access or refresh token issued to the requesting client.
func (e *Engine) Revoke(ctx context.Context, req RevokeRequest) (RevokeResponse, error) {
	client, err := e.AuthenticateClient(ctx, req.Client)
	if err != nil {
		return RevokeResponse{}, err
	}
	if req.TokenType == "" {
		return RevokeResponse{}, InvalidRequest(`missing required "token_type" parameter from POST-request payload`).WithClient(client.ClientID)
	}
	if req.Token == "" {
		return RevokeResponse{}, InvalidRequest(`missing required "token" parameter from POST-request payload`).WithClient(client.ClientID)
	}

	now := e.Now()
	hash := cryptox.FingerprintToken(req.Token)
	switch req.TokenType {
	case "access_token":
		err = e.Store.AccessTokens().ExpireAccessToken(ctx, hash, client.ID, now)
	case "refresh_token":
		err = e.Store.RefreshTokens().ExpireRefreshToken(ctx, hash, client.ID, now)
	default:
		return RevokeResponse{}, InvalidRequest("token_type must either be access_token or refresh_token").WithClient(client.ClientID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return RevokeResponse{}, InvalidRequest("unknown %s: %s", req.TokenType, req.Token).WithClient(client.ClientID)
	}
	if err != nil {
		return RevokeResponse{}, fmt.Errorf("revoke %s: %w", req.TokenType, err)
	}

	e.Observer.OnEvent(ctx, Event{Name: EventTokenRevoked, ClientID: client.ClientID})
	return RevokeResponse{Err: 0, Msg: fmt.Sprintf("%s %s successfully revoked", req.TokenType, req.Token)}, nil
}

// mintToken returns a new bearer value and the fingerprint stored for it.
func mintToken() (raw, hash string, err error) {
	raw, err = cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	return raw, cryptox.FingerprintToken(raw), nil
}

// createAccessToken stores t under a new bearer value and returns the value.
func (e *Engine) createAccessToken(ctx context.Context, t domain.AccessToken) (string, error) {
	raw, hash, err := mintToken()
	if err != nil {
		return "", err
	}
	t.TokenHash = hash
	if err := e.Store.AccessTokens().CreateAccessToken(ctx, t); err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}
	return raw, nil
}

// liveSession returns the session key when it still exists and is
// authenticated as userID.
func (e *Engine) liveSession(ctx context.Context, key, userID string) (domain.Session, bool, error) {
	if key == "" {
		return domain.Session{}, false, nil
	}
	session, err := e.Store.Sessions().GetSession(ctx, key, e.Now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}
