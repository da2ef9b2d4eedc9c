// FILE: lixenwraith/layerconf/provider/redis/redis_test.go
package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lixenwraith/layerconf"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadsHash", func(t *testing.T) {
		_, client := setupRedis(t)
		require.NoError(t, client.HSet(ctx, "app", "server:port", "8080", "Server:Host", "remote").Err())

		p := New(client, Options{Key: "app"})
		require.NoError(t, p.Load())

		v, ok := p.TryGet("server:port")
		assert.True(t, ok)
		assert.Equal(t, "8080", v)
		assert.Equal(t, []string{"Host", "port"}, p.ChildKeys("server"))
	})

	t.Run("MissingHashIsEmpty", func(t *testing.T) {
		_, client := setupRedis(t)
		p := New(client, Options{Key: "absent"})
		require.NoError(t, p.Load())
		assert.Equal(t, 0, p.Len())
	})

	t.Run("KeyRequired", func(t *testing.T) {
		_, client := setupRedis(t)
		assert.ErrorIs(t, New(client, Options{}).Load(), ErrNoKey)
	})

	t.Run("UnreachableServerFailsAdd", func(t *testing.T) {
		mr, client := setupRedis(t)
		mr.Close()

		b := layerconf.NewBuilder()
		Add(b, client, Options{Key: "app", Timeout: 200 * time.Millisecond})
		assert.ErrorIs(t, b.Err(), layerconf.ErrProviderLoad)
		assert.Equal(t, 0, b.Len())
	})
}

func TestRedisReloadOnPublish(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	require.NoError(t, client.HSet(ctx, "app", "mode", "blue").Err())

	p := New(client, Options{Key: "app", Channel: "app:changed"})
	root, err := layerconf.NewBuilder().Add(p).Build()
	require.NoError(t, err)
	defer root.Close()
	defer p.Close()

	var reloads atomic.Int32
	root.OnReload(func() { reloads.Add(1) })
	assert.Equal(t, "blue", root.Value("mode"))

	require.NoError(t, client.HSet(ctx, "app", "mode", "green").Err())
	assert.Equal(t, "blue", root.Value("mode"), "no reload before the notice")

	require.NoError(t, client.Publish(ctx, "app:changed", "reload").Err())
	assert.Eventually(t, func() bool {
		return root.Value("mode") == "green" && reloads.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	t.Run("SecondLoadKeepsOneSubscription", func(t *testing.T) {
		require.NoError(t, p.Load())
		require.NoError(t, client.Publish(ctx, "app:changed", "reload").Err())
		assert.Eventually(t, func() bool { return reloads.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("CloseEndsSubscription", func(t *testing.T) {
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())

		require.NoError(t, client.HSet(ctx, "app", "mode", "red").Err())
		require.NoError(t, client.Publish(ctx, "app:changed", "reload").Err())
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, "green", root.Value("mode"))
	})
}
