package httpfetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiterDisabledByDefault(t *testing.T) {
	l := newHostLimiter(0, 0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.wait(ctx, "https://data.ris.ripe.net/rrc00/"))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostLimiterPacesPerHost(t *testing.T) {
	l := newHostLimiter(10, 1)
	ctx := context.Background()

	require.NoError(t, l.wait(ctx, "https://archive.routeviews.org/bgpdata/"))
	start := time.Now()
	require.NoError(t, l.wait(ctx, "https://archive.routeviews.org/bgpdata/"))
	assert.Greater(t, time.Since(start), 50*time.Millisecond)
}

func TestHostLimiterTracksHostsIndependently(t *testing.T) {
	l := newHostLimiter(1, 1)
	ctx := context.Background()

	require.NoError(t, l.wait(ctx, "https://a.example.org/x"))
	start := time.Now()
	require.NoError(t, l.wait(ctx, "https://b.example.org/x"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "a different host must not share a's token bucket")
}

func TestHostLimiterUnparsableURLFallsBackToUnknownBucket(t *testing.T) {
	l := newHostLimiter(0, 0)
	require.NoError(t, l.wait(context.Background(), "://not a url"))
}

func TestHostLimiterCanceledContext(t *testing.T) {
	l := newHostLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, l.wait(context.Background(), "https://c.example.org/x"))
	err := l.wait(ctx, "https://c.example.org/x")
	assert.Error(t, err)
}
