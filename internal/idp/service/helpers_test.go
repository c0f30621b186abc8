package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
)

const (
	testIssuer   = "https://idp.example.com"
	testPassword = "correct horse battery staple"
	testNonce    = "n-0S6_WzA2Mj"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) OnEvent(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

type testEnv struct {
	t        *testing.T
	ctx      context.Context
	store    *sqlite.Store
	engine   *Engine
	ou       domain.OrganizationalUnit
	user     domain.User
	observed *recordingObserver

	mu  sync.Mutex
	now time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	env := &testEnv{
		t:        t,
		ctx:      context.Background(),
		store:    st,
		observed: &recordingObserver{},
		now:      time.Now().UTC().Truncate(time.Second),
	}

	hasher := cryptox.NewPasswordHasher("pepper")
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	env.ou = domain.OrganizationalUnit{ID: idx.New().String(), Slug: "default", Name: "Default", CreatedAt: env.now}
	require.NoError(t, st.Users().UpsertOU(env.ctx, env.ou))

	env.user = domain.User{
		ID:            idx.New().String(),
		UUID:          uuid.New(),
		Username:      "jdoe",
		Email:         "john.doe@example.com",
		EmailVerified: true,
		FirstName:     "John",
		LastName:      "Doe",
		PasswordHash:  hash,
		OUID:          env.ou.ID,
		Attributes:    map[string]any{"phone": "+33 1 23 45 67 89"},
		CreatedAt:     env.now,
		UpdatedAt:     env.now,
	}
	require.NoError(t, st.Users().UpsertUser(env.ctx, env.user))

	base := []Option{
		WithPasswordHasher(hasher),
		WithObserver(env.observed),
		WithClock(env.clock),
	}
	cfg := Config{Issuer: testIssuer, SecretKey: testSecret}
	env.engine = NewEngine(cfg, st, nil, append(base, opts...)...)
	return env
}

func (env *testEnv) clock() time.Time {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.now
}

func (env *testEnv) advance(d time.Duration) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.now = env.now.Add(d)
}

// client registers a code flow client; mutate adjusts the defaults.
func (env *testEnv) client(clientID string, mutate func(*domain.Client)) domain.Client {
	env.t.Helper()
	c := domain.Client{
		ID:                    idx.New().String(),
		ClientID:              clientID,
		Secret:                clientID + "-secret",
		Name:                  "Relying party " + clientID,
		OUID:                  env.ou.ID,
		RedirectURIs:          "https://rp.example.com/cb",
		FrontchannelLogoutURI: "https://rp.example.com/logout",
		IdentifierPolicy:      domain.PolicyPairwiseReversible,
		IDTokenAlgo:           domain.AlgoHMAC,
		AuthorizationFlow:     domain.FlowAuthorizationCode,
		AuthorizationMode:     domain.AuthorizationNone,
		Scope:                 "openid email profile offline_access",
		UsesRefreshTokens:     true,
		CreatedAt:             env.now,
		UpdatedAt:             env.now,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(env.t, env.store.Clients().UpsertClient(env.ctx, c))
	return c
}

func (env *testEnv) claims(c domain.Client, mappings ...domain.ClaimMapping) {
	env.t.Helper()
	require.NoError(env.t, env.store.Clients().ReplaceClaims(env.ctx, c.ID, mappings))
}

// session opens a browser session for the test user.
func (env *testEnv) session() *domain.Session {
	env.t.Helper()
	s := domain.Session{
		Key:          idx.New().String(),
		UserID:       env.user.ID,
		AuthTime:     env.clock(),
		AuthNonce:    testNonce,
		AuthHow:      "password",
		ExpiresAt:    env.clock().Add(time.Hour),
		OIDCSessions: map[string]domain.FrontchannelEntry{},
		CreatedAt:    env.clock(),
	}
	require.NoError(env.t, env.store.Sessions().CreateSession(env.ctx, s))
	return &s
}

func creds(c domain.Client) ClientCredentials {
	return ClientCredentials{InForm: true, ID: c.ClientID, Secret: c.Secret}
}

func strPtr(s string) *string { return &s }

// code runs a successful code flow authorization and returns the code.
func (env *testEnv) code(c domain.Client, s *domain.Session, mutate func(*AuthorizeRequest)) string {
	env.t.Helper()
	req := AuthorizeRequest{
		ClientID:     c.ClientID,
		RedirectURI:  "https://rp.example.com/cb",
		ResponseType: "code",
		Scope:        "openid email",
		State:        strPtr("xyz"),
		Nonce:        strPtr(testNonce),
		Session:      s,
	}
	if mutate != nil {
		mutate(&req)
	}
	out, err := env.engine.Authorize(env.ctx, req)
	require.NoError(env.t, err)
	require.Equal(env.t, OutcomeRedirect, out.Kind)

	u, err := url.Parse(out.Location)
	require.NoError(env.t, err)
	code := u.Query().Get("code")
	require.NotEmpty(env.t, code)
	return code
}

// requireOIDCError asserts err is a protocol error with code, and returns it.
func requireOIDCError(t *testing.T, err error, code string) *OIDCError {
	t.Helper()
	var oerr *OIDCError
	require.True(t, errors.As(err, &oerr), "expected *OIDCError, got %v", err)
	require.Equal(t, code, oerr.Code, oerr.Description)
	return oerr
}

// fragment parses the fragment parameters of a redirect location.
func fragment(t *testing.T, location string) url.Values {
	t.Helper()
	_, frag, ok := strings.Cut(location, "#")
	require.True(t, ok, "no fragment in %s", location)
	v, err := url.ParseQuery(frag)
	require.NoError(t, err)
	return v
}
