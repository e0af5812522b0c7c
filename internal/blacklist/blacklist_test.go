package blacklist

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMemoryStore_AddContains(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	exp := time.Now().Add(time.Hour)

	ok, err := s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Add(ctx, "tok", exp))
	ok, err = s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	// idempotent
	require.NoError(t, s.Add(ctx, "tok", exp))
	assert.Equal(t, 1, s.Len())
	ok, _ = s.Contains(ctx, "tok")
	assert.True(t, ok)
}

func TestMemoryStore_KeepsLaterExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	later := time.Now().Add(time.Hour)
	require.NoError(t, s.Add(ctx, "tok", later))
	require.NoError(t, s.Add(ctx, "tok", time.Now().Add(-time.Hour)))

	ok, _ := s.Contains(ctx, "tok")
	assert.True(t, ok)
}

func TestMemoryStore_ExpiredAndSweep(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Add(ctx, "old", base.Add(-time.Second)))
	require.NoError(t, s.Add(ctx, "live", base.Add(time.Minute)))

	ok, _ := s.Contains(ctx, "old")
	assert.False(t, ok, "expired entry must not count as revoked")

	assert.Equal(t, 1, s.Sweep(base))
	assert.Equal(t, 1, s.Len())

	assert.Equal(t, 1, s.Sweep(base.Add(time.Minute)))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Add(ctx, "same", exp)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_AddContains(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	ok, err := s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Add(ctx, "tok", time.Now().Add(time.Minute)))
	require.NoError(t, s.Add(ctx, "tok", time.Now().Add(time.Minute)))

	ok, err = s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ttl := mr.TTL(key("tok"))
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.False(t, mr.Exists(keyPrefix+"tok"), "raw token must not be used as key")
}

func TestRedisStore_EntryExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Add(ctx, "tok", time.Now().Add(30*time.Second)))
	mr.FastForward(31 * time.Second)

	ok, err := s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SkipsExpiredToken(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Add(ctx, "tok", time.Now().Add(-time.Second)))
	assert.Empty(t, mr.Keys())
}

func TestRedisStore_Error(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	s := NewRedisStore(client)
	mr.Close()

	_, err = s.Contains(ctx, "tok")
	assert.Error(t, err)
	assert.Error(t, s.Add(ctx, "tok", time.Now().Add(time.Minute)))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestConnect_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	_ = client.Close()
}

type countingSweeper struct {
	mu     sync.Mutex
	calls  int
	remove int
}

func (c *countingSweeper) Sweep(time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.remove
}

func (c *countingSweeper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStartSweeper_Runs(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&syncBuffer{buf: &buf}),
		zapcore.DebugLevel,
	)
	logger := zap.New(core)

	sw := &countingSweeper{remove: 2}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSweeper(ctx, sw, 10*time.Millisecond, logger)
	time.Sleep(100 * time.Millisecond)
	cancel()

	assert.Greater(t, sw.Calls(), 0)
	assert.True(t, strings.Contains(bufString(&buf), "swept expired revoked tokens"))
}

func TestStartSweeper_CancelBeforeTick(t *testing.T) {
	sw := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	StartSweeper(ctx, sw, 100*time.Millisecond, zap.NewNop())
	cancel()
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 0, sw.Calls())
}

var bufMu sync.Mutex

type syncBuffer struct{ buf *bytes.Buffer }

func (s *syncBuffer) Write(p []byte) (int, error) {
	bufMu.Lock()
	defer bufMu.Unlock()
	return s.buf.Write(p)
}

func bufString(b *bytes.Buffer) string {
	bufMu.Lock()
	defer bufMu.Unlock()
	return b.String()
}
