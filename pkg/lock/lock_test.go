package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

func newTestManager(t *testing.T) (*miniredis.Miniredis, *Manager) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewManager(client, "app:", logger.Discard)
}

func TestCategory(t *testing.T) {
	c, err := ParseCategory("actions")
	require.NoError(t, err)
	assert.Equal(t, Actions, c)
	assert.Equal(t, "Database", Database.String())
	assert.Len(t, AllCategories(), 2)

	_, err = ParseCategory("Files")
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.False(t, Category(0).Valid())
}

func TestManager_Key(t *testing.T) {
	_, mgr := newTestManager(t)
	assert.Equal(t, "app:lock:Actions:job-7", mgr.Key(Actions, "job-7"))
	assert.Equal(t, "app:lock:Database:job-7", mgr.Key(Database, "job-7"))
}

func TestManager_Scenario(t *testing.T) {
	ctx := context.Background()
	m, mgr := newTestManager(t)

	ok, err := mgr.Acquire(ctx, Actions, "job-7", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := m.Get("app:lock:Actions:job-7")
	require.NoError(t, err)
	assert.Equal(t, Sentinel, v)
	assert.Equal(t, 5*time.Second, m.TTL("app:lock:Actions:job-7"))

	ok, err = mgr.Acquire(ctx, Actions, "job-7", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	locked, err := mgr.IsLocked(ctx, Actions, "job-7")
	require.NoError(t, err)
	assert.True(t, locked)

	released, err := mgr.Release(ctx, Actions, "job-7")
	require.NoError(t, err)
	assert.True(t, released)

	locked, err = mgr.IsLocked(ctx, Actions, "job-7")
	require.NoError(t, err)
	assert.False(t, locked)

	released, err = mgr.Release(ctx, Actions, "job-7")
	require.NoError(t, err)
	assert.False(t, released, "releasing an absent lock is not an error")
}

func TestManager_CategoriesAreSeparate(t *testing.T) {
	ctx := context.Background()
	_, mgr := newTestManager(t)

	ok, err := mgr.Acquire(ctx, Database, "shared", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = mgr.Acquire(ctx, Actions, "shared", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_Expiration(t *testing.T) {
	ctx := context.Background()
	m, mgr := newTestManager(t)

	ok, err := mgr.Acquire(ctx, Database, "row-1", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(2 * time.Second)

	locked, err := mgr.IsLocked(ctx, Database, "row-1")
	require.NoError(t, err)
	assert.False(t, locked)

	ok, err = mgr.Acquire(ctx, Database, "row-1", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "acquire succeeds again after expiry")
}

func TestManager_Extend(t *testing.T) {
	ctx := context.Background()

	t.Run("adds to remaining ttl", func(t *testing.T) {
		m, mgr := newTestManager(t)
		ok, err := mgr.Acquire(ctx, Actions, "job", 10*time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		m.FastForward(4 * time.Second)

		ok, err = mgr.Extend(ctx, Actions, "job", 5*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 11*time.Second, m.TTL("app:lock:Actions:job"))

		ttl, err := mgr.TTL(ctx, Actions, "job")
		require.NoError(t, err)
		assert.Equal(t, 11*time.Second, ttl)
	})

	t.Run("absent lock", func(t *testing.T) {
		m, mgr := newTestManager(t)
		ok, err := mgr.Extend(ctx, Actions, "missing", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, m.Exists("app:lock:Actions:missing"), "extend must not create a lock")
	})

	t.Run("key without expiry", func(t *testing.T) {
		m, mgr := newTestManager(t)
		require.NoError(t, m.Set("app:lock:Actions:forever", Sentinel))

		ok, err := mgr.Extend(ctx, Actions, "forever", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, m.TTL("app:lock:Actions:forever"))
	})
}

func TestManager_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	_, mgr := newTestManager(t)

	_, err := mgr.Acquire(ctx, Actions, "k", 0)
	assert.True(t, apperrors.IsInvalidArgument(err))
	_, err = mgr.Acquire(ctx, Category(9), "k", time.Second)
	assert.True(t, apperrors.IsInvalidArgument(err))
	_, err = mgr.Release(ctx, Actions, " ")
	assert.True(t, apperrors.IsInvalidArgument(err))
	_, err = mgr.Extend(ctx, Actions, "k", -time.Second)
	assert.True(t, apperrors.IsInvalidArgument(err))
	_, err = mgr.IsLocked(ctx, Category(0), "k")
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestManager_StoreFailure(t *testing.T) {
	ctx := context.Background()
	m, mgr := newTestManager(t)
	m.Close()

	_, err := mgr.Acquire(ctx, Actions, "k", time.Second)
	assert.True(t, apperrors.IsStoreFailure(err))
	_, err = mgr.IsLocked(ctx, Actions, "k")
	assert.True(t, apperrors.IsStoreFailure(err))
}

func TestManager_ConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	_, mgr := newTestManager(t)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := mgr.Acquire(ctx, Database, "contended", time.Minute)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, winners.Load())
}

func TestManager_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("runs and releases", func(t *testing.T) {
		_, mgr := newTestManager(t)
		ran := false
		err := mgr.Do(ctx, Actions, "job-9", time.Minute, func(ctx context.Context) error {
			locked, err := mgr.IsLocked(ctx, Actions, "job-9")
			require.NoError(t, err)
			assert.True(t, locked)
			ran = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)

		locked, err := mgr.IsLocked(ctx, Actions, "job-9")
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("held lock", func(t *testing.T) {
		_, mgr := newTestManager(t)
		_, err := mgr.Acquire(ctx, Actions, "job-9", time.Minute)
		require.NoError(t, err)

		err = mgr.Do(ctx, Actions, "job-9", time.Minute, func(context.Context) error {
			t.Fatal("must not run while the lock is held")
			return nil
		})
		assert.True(t, apperrors.IsLockHeld(err))
	})

	t.Run("releases on error", func(t *testing.T) {
		_, mgr := newTestManager(t)
		boom := errors.New("boom")
		err := mgr.Do(ctx, Actions, "job-9", time.Minute, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)

		locked, err := mgr.IsLocked(ctx, Actions, "job-9")
		require.NoError(t, err)
		assert.False(t, locked)
	})
}
