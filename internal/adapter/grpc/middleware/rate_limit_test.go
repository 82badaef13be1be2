package middleware

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const listMethod = "/directory.v1.Directory/ListPage"

// fakeClock hands the limiter a time that only moves when told to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newLimiter(t *testing.T, rps float64, burst int) (*RateLimiter, *fakeClock, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: rps, BurstCapacity: burst, Enabled: true}, zaptest.NewLogger(t))
	rl.now = clock.Now
	return rl, clock, mr
}

// takeAll drains the bucket and returns how many requests got through.
func takeAll(rl *RateLimiter, scope, client string, max int) int {
	n := 0
	for i := 0; i < max; i++ {
		if rl.Allow(context.Background(), scope, client) {
			n++
		}
	}
	return n
}

func TestAllow_BurstThenEmpty(t *testing.T) {
	rl, _, _ := newLimiter(t, 1, 4)

	assert.Equal(t, 4, takeAll(rl, listMethod, "10.0.0.1", 10))
	assert.False(t, rl.Allow(context.Background(), listMethod, "10.0.0.1"))
}

func TestAllow_RefillsAtRate(t *testing.T) {
	rl, clock, _ := newLimiter(t, 2, 4)
	ctx := context.Background()

	require.Equal(t, 4, takeAll(rl, listMethod, "10.0.0.1", 4))
	require.False(t, rl.Allow(ctx, listMethod, "10.0.0.1"))

	// half a second at 2 tokens/s is one token
	clock.Advance(500 * time.Millisecond)
	assert.True(t, rl.Allow(ctx, listMethod, "10.0.0.1"))
	assert.False(t, rl.Allow(ctx, listMethod, "10.0.0.1"))

	// 250ms is only half a token
	clock.Advance(250 * time.Millisecond)
	assert.False(t, rl.Allow(ctx, listMethod, "10.0.0.1"))
	clock.Advance(250 * time.Millisecond)
	assert.True(t, rl.Allow(ctx, listMethod, "10.0.0.1"))
}

func TestAllow_RefillCapsAtBurst(t *testing.T) {
	rl, clock, _ := newLimiter(t, 5, 3)

	require.Equal(t, 3, takeAll(rl, listMethod, "10.0.0.1", 3))
	clock.Advance(10 * time.Second)

	assert.Equal(t, 3, takeAll(rl, listMethod, "10.0.0.1", 10))
}

func TestAllow_BucketsAreScopedByMethodAndClient(t *testing.T) {
	rl, _, mr := newLimiter(t, 1, 2)

	require.Equal(t, 2, takeAll(rl, listMethod, "10.0.0.1", 5))

	assert.Equal(t, 2, takeAll(rl, listMethod, "10.0.0.2", 5))
	assert.Equal(t, 2, takeAll(rl, "/directory.v1.Directory/GetItem", "10.0.0.1", 5))

	key := "ratelimit:tb:" + listMethod + ":10.0.0.1"
	require.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, bucketTTL*time.Second)
}

func TestUnaryInterceptor(t *testing.T) {
	rl, clock, _ := newLimiter(t, 1, 2)
	interceptor := rl.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	calls := 0
	handler := func(ctx context.Context, req any) (any, error) {
		calls++
		return "ok", nil
	}

	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:40000")
	require.NoError(t, err)
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: addr})

	for i := 0; i < 2; i++ {
		resp, err := interceptor(ctx, nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	}

	resp, err := interceptor(ctx, nil, info, handler)
	assert.Nil(t, resp)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "burst capacity: 2")
	assert.Equal(t, 2, calls)

	clock.Advance(time.Second)
	_, err = interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGetClientIP(t *testing.T) {
	rl, _, _ := newLimiter(t, 1, 1)
	addr, err := net.ResolveTCPAddr("tcp", "198.51.100.7:5000")
	require.NoError(t, err)
	withPeer := peer.NewContext(context.Background(), &peer.Peer{Addr: addr})

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "forwarded for wins", ctx: metadata.NewIncomingContext(withPeer, metadata.Pairs("x-forwarded-for", "203.0.113.1", "x-real-ip", "203.0.113.2")), want: "203.0.113.1"},
		{name: "real ip", ctx: metadata.NewIncomingContext(withPeer, metadata.Pairs("x-real-ip", "203.0.113.2")), want: "203.0.113.2"},
		{name: "peer address", ctx: withPeer, want: "198.51.100.7:5000"},
		{name: "nothing known", ctx: context.Background(), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rl.getClientIP(tt.ctx))
		})
	}
}

func TestRateLimiter_DisabledOrBroken(t *testing.T) {
	t.Run("disabled config", func(t *testing.T) {
		rl, _, _ := newLimiter(t, 1, 1)
		rl.config.Enabled = false
		assert.Equal(t, 5, takeAll(rl, listMethod, "10.0.0.1", 5))
	})

	t.Run("redis down fails open", func(t *testing.T) {
		rl, _, mr := newLimiter(t, 1, 1)
		mr.Close()
		assert.Equal(t, 5, takeAll(rl, listMethod, "10.0.0.1", 5))
	})

	t.Run("nil limiter", func(t *testing.T) {
		var rl *RateLimiter
		assert.False(t, rl.Enabled())
		assert.True(t, rl.Allow(context.Background(), listMethod, "10.0.0.1"))

		resp, err := rl.UnaryInterceptor()(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: listMethod},
			func(context.Context, any) (any, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})
}
