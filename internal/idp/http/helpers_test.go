package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	idphttp "github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/http"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/authsdk"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/idx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
)

const (
	testIssuer   = "https://idp.example.com"
	testPassword = "correct horse battery staple"
	redirectURI  = "https://rp.example.com/cb"
)

type testServer struct {
	t      *testing.T
	ctx    context.Context
	store  *sqlite.Store
	engine *service.Engine
	ou     domain.OrganizationalUnit
	user   domain.User
	srv    *httptest.Server
	sdk    *authsdk.SDKClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()
	now := time.Now().UTC()

	hasher := cryptox.NewPasswordHasher("pepper")
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	ou := domain.OrganizationalUnit{ID: idx.New().String(), Slug: "default", Name: "Default", CreatedAt: now}
	require.NoError(t, st.Users().UpsertOU(ctx, ou))
	user := domain.User{
		ID:            idx.New().String(),
		UUID:          uuid.New(),
		Username:      "jdoe",
		Email:         "john.doe@example.com",
		EmailVerified: true,
		FirstName:     "John",
		LastName:      "Doe",
		PasswordHash:  hash,
		OUID:          ou.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Users().UpsertUser(ctx, user))

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithms: []string{jwtx.AlgorithmES256}})
	require.NoError(t, err)

	engine := service.NewEngine(
		service.Config{Issuer: testIssuer, SecretKey: []byte("0123456789abcdef0123456789abcdef")},
		st, keys,
		service.WithPasswordHasher(hasher),
	)

	router := idphttp.NewRouter(engine, keys, st, "test", slogx.Discard())
	router.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		t:      t,
		ctx:    ctx,
		store:  st,
		engine: engine,
		ou:     ou,
		user:   user,
		srv:    srv,
		sdk:    authsdk.NewSDKClient(srv.URL),
	}
}

// client registers a code flow client; mutate adjusts the defaults.
func (ts *testServer) client(clientID string, mutate func(*domain.Client)) authsdk.Credentials {
	ts.t.Helper()
	now := time.Now().UTC()
	c := domain.Client{
		ID:                     idx.New().String(),
		ClientID:               clientID,
		Secret:                 clientID + "-secret",
		Name:                   "Relying party " + clientID,
		OUID:                   ts.ou.ID,
		RedirectURIs:           redirectURI,
		PostLogoutRedirectURIs: "https://rp.example.com/bye",
		FrontchannelLogoutURI:  "https://rp.example.com/logout",
		IdentifierPolicy:       domain.PolicyPairwiseReversible,
		IDTokenAlgo:            domain.AlgoHMAC,
		AuthorizationFlow:      domain.FlowAuthorizationCode,
		AuthorizationMode:      domain.AuthorizationNone,
		Scope:                  "openid email profile offline_access",
		UsesRefreshTokens:      true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(ts.t, ts.store.Clients().UpsertClient(ts.ctx, c))
	require.NoError(ts.t, ts.store.Clients().ReplaceClaims(ts.ctx, c.ID, []domain.ClaimMapping{
		{ID: idx.New().String(), ClientID: c.ID, Name: "email", Value: "email", Scopes: "email"},
	}))
	return authsdk.Credentials{ClientID: c.ClientID, ClientSecret: c.Secret}
}

// login opens a browser session for the test user.
func (ts *testServer) login(nonce string) string {
	ts.t.Helper()
	key, err := ts.sdk.Login(ts.ctx, "jdoe", testPassword, "", nonce)
	require.NoError(ts.t, err)
	require.NotEmpty(ts.t, key)
	return key
}

// code runs an authorization for creds that needs no consent.
func (ts *testServer) code(key string, creds authsdk.Credentials, scopes ...string) string {
	ts.t.Helper()
	res, err := ts.sdk.Authorize(ts.ctx, key, authsdk.AuthorizeParams{
		ClientID:    creds.ClientID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		State:       "xyz",
		Nonce:       "n-1",
	})
	require.NoError(ts.t, err)
	require.NotNil(ts.t, res.Location, "expected a redirect")

	params, err := authsdk.ParseAuthorizationCallback(res.Location.String())
	require.NoError(ts.t, err)
	require.Equal(ts.t, "xyz", params.Get("state"))
	return params.Get("code")
}

// do sends req to the test server without following redirects.
func (ts *testServer) do(req *http.Request) *http.Response {
	ts.t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
