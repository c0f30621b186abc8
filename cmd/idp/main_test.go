package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/app"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
)

func TestReverseSub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := app.Config{Issuer: "https://idp.example.com", SecretKey: "reverse-secret", DatabaseFile: ":memory:"}
	db, err := app.OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svcCfg, _ := cfg.ServiceConfig()
	engine := service.NewEngine(svcCfg, db, nil)
	p := &app.Provisioner{Store: db, Engine: engine}
	_, err = p.Provision(ctx, app.Fixtures{
		Users: []app.UserFixture{{Username: "jdoe", UUID: "0f8fad5b-d9cb-469f-a165-70867728950e"}},
		Clients: []app.ClientFixture{
			{ClientID: "rev", RedirectURIs: []string{"https://rp.example.com/cb"}, IdentifierPolicy: "pairwise-reversible"},
			{ClientID: "plain", RedirectURIs: []string{"https://rp.example.com/cb"}, IdentifierPolicy: "uuid"},
		},
	})
	require.NoError(t, err)

	user, err := db.Users().GetUserByUsername(ctx, "jdoe", "")
	require.NoError(t, err)
	client, err := db.Clients().GetClientByClientID(ctx, "rev")
	require.NoError(t, err)
	sub, err := engine.MakeSub(ctx, client, user, nil)
	require.NoError(t, err)

	got, err := reverseSub(ctx, cfg, db, "rev", sub)
	require.NoError(t, err)
	require.Equal(t, "0f8fad5bd9cb469fa16570867728950e", got)

	_, err = reverseSub(ctx, cfg, db, "plain", sub)
	require.ErrorContains(t, err, "cannot be reversed")

	_, err = reverseSub(ctx, cfg, db, "ghost", sub)
	require.ErrorContains(t, err, `unknown client "ghost"`)
}

func TestRootCommand(t *testing.T) {
	t.Parallel()
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "provision", "reverse-sub"} {
		require.True(t, names[want], "missing %s command", want)
	}

	cmd, _, err := root.Find([]string{"reverse-sub"})
	require.NoError(t, err)
	require.NotNil(t, cmd.Flags().Lookup("client"))
}
