package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewRedisStore(mr.Addr(), 0)
	t.Cleanup(func() { _ = rs.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  rs,
	}
}

func TestStore_Incr(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := s.Count(ctx, "k")
			require.NoError(t, err)
			require.Zero(t, n)

			for want := int64(1); want <= 3; want++ {
				n, err := s.Incr(ctx, "k", time.Minute)
				require.NoError(t, err)
				require.Equal(t, want, n)
			}

			n, err = s.Count(ctx, "k")
			require.NoError(t, err)
			require.EqualValues(t, 3, n)

			require.NoError(t, s.Delete(ctx, "k", "absent"))
			n, err = s.Count(ctx, "k")
			require.NoError(t, err)
			require.Zero(t, n)
		})
	}
}

func TestStore_ConcurrentIncr(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Incr(ctx, "shared", time.Minute)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			n, err := s.Count(ctx, "shared")
			require.NoError(t, err)
			require.EqualValues(t, 50, n, "no lost updates")
		})
	}
}

func TestStore_GetSet(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "v")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set(ctx, "v", []byte("hello"), time.Minute))
			got, ok, err := s.Get(ctx, "v")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("hello"), got)

			require.NoError(t, s.Expire(ctx, "v", time.Hour))
			require.NoError(t, s.Expire(ctx, "absent", time.Hour))
		})
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), 0)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	_, err := s.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, time.Minute, mr.TTL("k"))

	// Later hits do not extend a fixed window.
	mr.FastForward(30 * time.Second)
	_, err = s.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, mr.TTL("k"))

	mr.FastForward(31 * time.Second)
	n, err := s.Count(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRedisStore_IncrArmsMissingTTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), 0)
	ctx := context.Background()

	// A counter left without a TTL gets one on the next hit.
	require.NoError(t, mr.Set("k", "3"))
	require.Zero(t, mr.TTL("k"))

	n, err := s.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, time.Minute, mr.TTL("k"))
}
