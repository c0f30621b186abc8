package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
)

func TestMakeSub_Policies(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	uuidClient := env.client("uuid-rp", func(c *domain.Client) { c.IdentifierPolicy = domain.PolicyUUID })
	sub, err := env.engine.MakeSub(env.ctx, uuidClient, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, env.user.UUIDHex(), sub)
	require.Len(t, sub, 32)

	emailClient := env.client("email-rp", func(c *domain.Client) { c.IdentifierPolicy = domain.PolicyEmail })
	sub, err = env.engine.MakeSub(env.ctx, emailClient, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, env.user.Email, sub)
}

func TestMakeSub_Pairwise(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	pairwise := func(c *domain.Client) { c.IdentifierPolicy = domain.PolicyPairwise }
	a := env.client("rp-a", pairwise)
	b := env.client("rp-b", pairwise)
	other := env.client("rp-other", func(c *domain.Client) {
		c.IdentifierPolicy = domain.PolicyPairwise
		c.RedirectURIs = "https://other.example.org/cb"
	})

	subA, err := env.engine.MakeSub(env.ctx, a, env.user, nil)
	require.NoError(t, err)
	again, err := env.engine.MakeSub(env.ctx, a, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, subA, again)

	subB, err := env.engine.MakeSub(env.ctx, b, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, subA, subB, "clients sharing a sector see the same sub")

	subOther, err := env.engine.MakeSub(env.ctx, other, env.user, nil)
	require.NoError(t, err)
	require.NotEqual(t, subA, subOther)

	profile := &domain.Profile{ID: "p1", UserID: env.user.ID}
	withProfile, err := env.engine.MakeSub(env.ctx, a, env.user, profile)
	require.NoError(t, err)
	require.NotEqual(t, subA, withProfile)
}

func TestMakeSub_SectorIdentifierURI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	a := env.client("rp-a", func(c *domain.Client) {
		c.RedirectURIs = "https://a.example.com/cb https://b.example.com/cb"
		c.SectorIdentifierURI = "https://sector.example.com/uris.json"
	})
	b := env.client("rp-b", func(c *domain.Client) {
		c.RedirectURIs = "https://sector.example.com/cb"
	})

	subA, err := env.engine.MakeSub(env.ctx, a, env.user, nil)
	require.NoError(t, err)
	subB, err := env.engine.MakeSub(env.ctx, b, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, subA, subB)
}

func TestMakeSub_MixedHostsUnavailable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	c := env.client("rp-mixed", func(c *domain.Client) {
		c.RedirectURIs = "https://a.example.com/cb https://b.example.com/cb"
	})
	_, err := env.engine.MakeSub(env.ctx, c, env.user, nil)
	require.ErrorIs(t, err, ErrSubjectUnavailable)
	require.ErrorIs(t, err, ErrSectorMismatch)
}

func TestMakeSub_OUSector(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	byOU := func(c *domain.Client) { c.AuthorizationMode = domain.AuthorizationByOU }
	a := env.client("rp-a", byOU)
	b := env.client("rp-b", func(c *domain.Client) {
		byOU(c)
		c.RedirectURIs = "https://elsewhere.example.net/cb"
	})

	subA, err := env.engine.MakeSub(env.ctx, a, env.user, nil)
	require.NoError(t, err)
	subB, err := env.engine.MakeSub(env.ctx, b, env.user, nil)
	require.NoError(t, err)
	require.Equal(t, subA, subB, "the OU is the sector")
}

func TestReverseSub(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	c := env.client("rp", nil)
	other := env.client("rp-other-sector", func(c *domain.Client) {
		c.RedirectURIs = "https://other.example.org/cb"
	})
	pairwise := env.client("rp-pairwise", func(c *domain.Client) { c.IdentifierPolicy = domain.PolicyPairwise })

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		sub, err := env.engine.MakeSub(env.ctx, c, env.user, nil)
		require.NoError(t, err)
		id, ok := env.engine.ReverseSub(env.ctx, c, sub)
		require.True(t, ok)
		require.Equal(t, env.user.UUID, id)
	})

	t.Run("round trip with profile", func(t *testing.T) {
		t.Parallel()
		profile := &domain.Profile{ID: "01HPROFILE", UserID: env.user.ID}
		plain, err := env.engine.MakeSub(env.ctx, c, env.user, nil)
		require.NoError(t, err)
		sub, err := env.engine.MakeSub(env.ctx, c, env.user, profile)
		require.NoError(t, err)
		require.NotEqual(t, plain, sub)

		id, ok := env.engine.ReverseSub(env.ctx, c, sub)
		require.True(t, ok)
		require.Equal(t, env.user.UUID, id)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		for _, sub := range []string{"", "not-a-sub", "AAAA", "!!!"} {
			_, ok := env.engine.ReverseSub(env.ctx, c, sub)
			require.False(t, ok, sub)
		}
	})

	t.Run("random 32 bytes", func(t *testing.T) {
		t.Parallel()
		for range 32 {
			b := make([]byte, 32)
			_, err := rand.Read(b)
			require.NoError(t, err)

			for _, sub := range []string{
				string(b),
				hex.EncodeToString(b),
				base64.RawURLEncoding.EncodeToString(b),
				base64.URLEncoding.EncodeToString(b),
			} {
				id, ok := env.engine.ReverseSub(env.ctx, c, sub)
				require.False(t, ok, "%q", sub)
				require.Equal(t, uuid.Nil, id)
			}
		}
	})

	t.Run("other sector", func(t *testing.T) {
		t.Parallel()
		sub, err := env.engine.MakeSub(env.ctx, c, env.user, nil)
		require.NoError(t, err)
		id, ok := env.engine.ReverseSub(env.ctx, other, sub)
		if ok {
			require.NotEqual(t, env.user.UUID, id)
		}
	})

	t.Run("non reversible policy", func(t *testing.T) {
		t.Parallel()
		sub, err := env.engine.MakeSub(env.ctx, pairwise, env.user, nil)
		require.NoError(t, err)
		_, ok := env.engine.ReverseSub(env.ctx, pairwise, sub)
		require.False(t, ok)
	})
}
