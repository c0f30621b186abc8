package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Rate
	}{
		{"100/m", Rate{100, time.Minute}},
		{"5/s", Rate{5, time.Second}},
		{"10/5m", Rate{10, 5 * time.Minute}},
		{"1000/h", Rate{1000, time.Hour}},
		{" 3/d ", Rate{3, 24 * time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "100", "x/m", "10/", "10/w", "10/0m", "-1/m"} {
		_, err := ParseRate(bad)
		require.Error(t, err, bad)
	}
}

func TestWindowLimiter(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC)

			l := NewWindowLimiter(s, "ro-cred-grant", Rate{Limit: 2, Window: time.Minute})
			l.now = func() time.Time { return now }

			exceeded, err := l.Exceeded(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.False(t, exceeded)

			for i := 0; i < 2; i++ {
				over, err := l.Hit(ctx, "10.0.0.1")
				require.NoError(t, err)
				require.False(t, over)
			}

			exceeded, err = l.Exceeded(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.False(t, exceeded, "at the limit is not over it")

			over, err := l.Hit(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.True(t, over)

			exceeded, err = l.Exceeded(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.True(t, exceeded)

			other, err := l.Exceeded(ctx, "10.0.0.2")
			require.NoError(t, err)
			require.False(t, other, "keys are independent")

			now = now.Add(time.Minute)
			exceeded, err = l.Exceeded(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.False(t, exceeded, "next window starts fresh")
		})
	}
}
