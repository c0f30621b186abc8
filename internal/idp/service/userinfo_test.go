package service

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
)

func TestUserInfo(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	c := env.client("rp", func(c *domain.Client) { c.IdentifierPolicy = domain.PolicyUUID })
	env.claims(c,
		domain.ClaimMapping{ID: "m1", ClientID: c.ID, Name: "email", Value: "email", Scopes: "email"},
		domain.ClaimMapping{ID: "m2", ClientID: c.ID, Name: "given_name", Value: "first_name", Scopes: "profile"},
		domain.ClaimMapping{ID: "m3", ClientID: c.ID, Name: "name", Value: "{{ .first_name }} {{ .last_name }}", Scopes: "profile"},
		domain.ClaimMapping{ID: "m4", ClientID: c.ID, Name: "phone_number", Value: "phone", Scopes: "phone"},
	)
	s := env.session()

	code := env.code(c, s, func(r *AuthorizeRequest) { r.Scope = "openid profile" })
	resp, err := env.engine.Token(env.ctx, codeRequest(c, code))
	require.NoError(t, err)

	info, err := env.engine.UserInfo(env.ctx, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"sub":        env.user.UUIDHex(),
		"iss":        testIssuer,
		"given_name": "John",
		"name":       "John Doe",
	}, info)
}

func TestAuthenticateAccessToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.engine.AuthenticateAccessToken(env.ctx, "unknown")
	oerr := requireOIDCError(t, err, CodeInvalidToken)
	require.Equal(t, "Token unknown", oerr.Description)
	require.Equal(t, http.StatusUnauthorized, oerr.Status)

	c := env.client("rp", nil)
	s := env.session()
	resp, err := env.engine.Token(env.ctx, codeRequest(c, env.code(c, s, nil)))
	require.NoError(t, err)

	// The session now belongs to someone else.
	jane := env.user
	jane.ID = idx.New().String()
	jane.UUID = uuid.New()
	jane.Username = "jane"
	jane.Email = "jane@example.com"
	require.NoError(t, env.store.Users().UpsertUser(env.ctx, jane))
	require.NoError(t, env.store.Sessions().DeleteSession(env.ctx, s.Key))
	other := *s
	other.UserID = jane.ID
	require.NoError(t, env.store.Sessions().CreateSession(env.ctx, other))

	_, err = env.engine.AuthenticateAccessToken(env.ctx, resp.AccessToken)
	oerr = requireOIDCError(t, err, CodeInvalidToken)
	require.Equal(t, "Token expired or user disconnected", oerr.Description)
}
