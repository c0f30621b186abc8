package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

const fixturesYAML = `
ous:
  - slug: default
    name: Default
users:
  - username: jdoe
    uuid: 0f8fad5b-d9cb-469f-a165-70867728950e
    email: john.doe@example.com
    email_verified: true
    first_name: John
    last_name: Doe
    password: s3cret
    ou: default
    attributes:
      phone: "0123"
    profiles:
      - type: company
        identifier: ACME
        email: jdoe@acme.example.com
clients:
  - client_id: portal
    secret: portal-secret
    name: Portal
    ou: default
    redirect_uris:
      - https://portal.example.com/cb
      - https://portal.example.com/other
    post_logout_redirect_uris:
      - https://portal.example.com/bye
    identifier_policy: pairwise-reversible
    idtoken_algo: hmac
    authorization_mode: none
    idtoken_duration: 2m
    scope: openid email
    uses_refresh_tokens: true
    claims:
      - name: email
        value: email
        scopes: [email]
      - name: given_name
        value: "{{ .first_name }}"
        scopes: [profile, email]
`

func newProvisioner(t *testing.T) (*Provisioner, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	engine := service.NewEngine(service.Config{Issuer: "https://idp.example.com", SecretKey: []byte("secret")}, st, nil)
	return &Provisioner{Store: st, Engine: engine, Hasher: cryptox.NewPasswordHasher("pepper")}, st
}

func TestProvision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, st := newProvisioner(t)

	fixtures, err := ParseFixtures(strings.NewReader(fixturesYAML))
	require.NoError(t, err)

	report, err := p.Provision(ctx, fixtures)
	require.NoError(t, err)
	require.Equal(t, ProvisionReport{OUs: 1, Users: 1, Profiles: 1, Clients: 1}, report)

	ou, err := st.Users().GetOUBySlug(ctx, "default")
	require.NoError(t, err)

	user, err := st.Users().GetUserByUsername(ctx, "jdoe", ou.ID)
	require.NoError(t, err)
	require.Equal(t, "0f8fad5bd9cb469fa16570867728950e", user.UUIDHex())
	require.NoError(t, p.Hasher.Verify("s3cret", user.PasswordHash))
	require.Equal(t, "0123", user.Attributes["phone"])

	profiles, err := st.Users().ListProfiles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "company", profiles[0].ProfileType)

	client, err := st.Clients().GetClientByClientID(ctx, "portal")
	require.NoError(t, err)
	require.Equal(t, domain.PolicyPairwiseReversible, client.IdentifierPolicy)
	require.Equal(t, domain.AlgoHMAC, client.IDTokenAlgo)
	require.Equal(t, domain.FlowAuthorizationCode, client.AuthorizationFlow)
	require.Equal(t, domain.AuthorizationNone, client.AuthorizationMode)
	require.Equal(t, ou.ID, client.OUID)
	require.NotNil(t, client.IDTokenDuration)
	require.Equal(t, 2*time.Minute, *client.IDTokenDuration)
	require.Len(t, client.RedirectURIList(), 2)
	// uses_refresh_tokens implies offline_access
	require.True(t, client.ScopeSet().Has("offline_access"))

	claims, err := st.Clients().ListClaims(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	require.Equal(t, "email", claims[0].Name)
	require.Equal(t, []string{"profile", "email"}, claims[1].ScopeList())

	t.Run("second run updates in place", func(t *testing.T) {
		fixtures.Users[0].FirstName = "Johnny"
		fixtures.Users[0].Password = ""
		fixtures.Clients[0].Claims = fixtures.Clients[0].Claims[:1]

		_, err := p.Provision(ctx, fixtures)
		require.NoError(t, err)

		again, err := st.Users().GetUserByUsername(ctx, "jdoe", ou.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, again.ID)
		require.Equal(t, "Johnny", again.FirstName)
		require.Equal(t, user.PasswordHash, again.PasswordHash)

		profiles, err := st.Users().ListProfiles(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, profiles, 1)

		updated, err := st.Clients().GetClientByClientID(ctx, "portal")
		require.NoError(t, err)
		require.Equal(t, client.ID, updated.ID)

		claims, err := st.Clients().ListClaims(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, claims, 1)
	})
}

func TestProvision_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown key",
			yaml:    "clients:\n  - client_id: a\n    colour: red\n",
			wantErr: "parse fixtures",
		},
		{
			name:    "unknown ou",
			yaml:    "users:\n  - username: a\n    ou: nowhere\n",
			wantErr: `unknown ou "nowhere"`,
		},
		{
			name:    "unknown policy",
			yaml:    "clients:\n  - client_id: a\n    identifier_policy: random\n",
			wantErr: "unknown identifier_policy",
		},
		{
			name: "pkce needs the code flow",
			yaml: "clients:\n  - client_id: a\n    redirect_uris: [https://a.example.com/cb]\n" +
				"    identifier_policy: uuid\n    authorization_flow: implicit\n    pkce_code_challenge: true\n",
			wantErr: service.ErrPKCERequiresCodeFlow.Error(),
		},
		{
			name: "pairwise needs one sector",
			yaml: "clients:\n  - client_id: a\n" +
				"    redirect_uris: [https://a.example.com/cb, https://b.example.com/cb]\n",
			wantErr: "sector identifier",
		},
		{
			name:    "always save needs a mode",
			yaml:    "clients:\n  - client_id: a\n    identifier_policy: uuid\n    authorization_mode: none\n    always_save_authorization: true\n",
			wantErr: service.ErrAlwaysSaveNeedsConsent.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, _ := newProvisioner(t)

			fixtures, err := ParseFixtures(strings.NewReader(tt.yaml))
			if err == nil {
				_, err = p.Provision(ctx, fixtures)
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvision_GeneratesSecret(t *testing.T) {
	t.Parallel()
	p, st := newProvisioner(t)
	ctx := context.Background()

	_, err := p.Provision(ctx, Fixtures{Clients: []ClientFixture{{
		ClientID:         "nosecret",
		RedirectURIs:     []string{"https://rp.example.com/cb"},
		IdentifierPolicy: "uuid",
	}}})
	require.NoError(t, err)

	client, err := st.Clients().GetClientByClientID(ctx, "nosecret")
	require.NoError(t, err)
	require.Len(t, client.Secret, 43)
	require.Equal(t, "nosecret", client.Name)
}
