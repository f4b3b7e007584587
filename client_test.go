package redisqueue

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/redisqueue/pkg/config"
	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

func newTestClient(t *testing.T, opts ...config.Option) (*miniredis.Miniredis, *Client) {
	t.Helper()
	m := miniredis.RunT(t)
	port, err := strconv.Atoi(m.Port())
	require.NoError(t, err)

	base := []config.Option{config.WithTestDefaults(), config.WithRedisAddr(m.Host(), port), config.WithQueuePrefix("app:")}
	c, err := New(context.Background(), WithConfigOptions(append(base, opts...)...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return m, c
}

func TestNew_CreatesStoreClient(t *testing.T) {
	_, c := newTestClient(t)

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "app:", c.Config().Redis.QueuePrefix)
	assert.Len(t, c.Factory().Types(), 4)

	q, err := c.Queue(StreamQueue)
	require.NoError(t, err)
	assert.Equal(t, StreamQueue, q.Type())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")
	assert.Error(t, c.Redis().Ping(context.Background()).Err(), "owned client is closed")
}

func TestNew_Unreachable(t *testing.T) {
	m := miniredis.RunT(t)
	host := m.Host()
	port, err := strconv.Atoi(m.Port())
	require.NoError(t, err)
	m.Close()

	_, err = New(context.Background(), WithConfigOptions(config.WithTestDefaults(), config.WithRedisAddr(host, port)))
	assert.True(t, apperrors.IsStoreFailure(err))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), WithConfigOptions(config.WithRedisAddr("", 0)))
	assert.True(t, apperrors.IsConfigError(err))
}

func TestNew_DoesNotMutateGivenConfig(t *testing.T) {
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	cfg := config.Default()
	c, err := New(context.Background(), WithConfig(cfg), WithRedisClient(rc), WithConfigOptions(config.WithQueuePrefix("other:")))
	require.NoError(t, err)
	assert.Equal(t, "other:", c.Config().Redis.QueuePrefix)
	assert.Equal(t, "redisqueue:", cfg.Redis.QueuePrefix)
}

func TestNew_ExternalClientIsNotClosed(t *testing.T) {
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	c, err := New(context.Background(), WithRedisClient(rc))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.NoError(t, rc.Ping(context.Background()).Err())
}

func TestClient_SenderAndListener(t *testing.T) {
	ctx := context.Background()
	_, c := newTestClient(t)

	require.NoError(t, c.Sender().SendToQueue(ctx, Queue1, "order-42"))

	var mu sync.Mutex
	var got []string
	listener := c.Listener(func() Processor {
		return ProcessorFunc(func(_ context.Context, name QueueName, msg string) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name.String()+"/"+msg)
			return nil
		})
	})
	require.NoError(t, listener.Cycle(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Queue1/order-42"}, got)
}

func TestClient_Locks(t *testing.T) {
	ctx := context.Background()
	m, c := newTestClient(t)

	ok, err := c.Locks().Acquire(ctx, Actions, "job-7", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.Exists("app:lock:Actions:job-7"))

	ok, err = c.Locks().Acquire(ctx, Actions, "job-7", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
