package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// Tests: InMemoryCache
// ========================================

func TestInMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache(0)
	defer cache.Close()

	_, found, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "k", []byte("v1"), time.Minute))
	value, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), value)

	// la valeur retournée est une copie
	value[0] = 'x'
	again, _, _ := cache.Get(ctx, "k")
	assert.Equal(t, []byte("v1"), again)

	require.NoError(t, cache.Delete(ctx, "k"))
	_, found, _ = cache.Get(ctx, "k")
	assert.False(t, found)
}

func TestInMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache(0)
	defer cache.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, cache.Set(ctx, "long", []byte("b"), time.Hour))

	now = now.Add(2 * time.Second)
	_, found, _ := cache.Get(ctx, "short")
	assert.False(t, found)
	_, found, _ = cache.Get(ctx, "long")
	assert.True(t, found)

	assert.Equal(t, 2, cache.Len())
	cache.purge()
	assert.Equal(t, 1, cache.Len())
}

func TestInMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache(time.Millisecond)
	defer cache.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Minute))
	}
	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())

	cache.Close()
	cache.Close()
}

// ========================================
// Tests: ShardedCache
// ========================================

func TestNewShardedCache_RequiresPowerOfTwo(t *testing.T) {
	_, err := NewShardedCache(3, 0)
	assert.Error(t, err)
	_, err = NewShardedCache(0, 0)
	assert.Error(t, err)

	cache, err := NewShardedCache(16, 0)
	require.NoError(t, err)
	defer cache.Close()
	assert.Len(t, cache.shards, 16)
}

func TestShardedCache_Operations(t *testing.T) {
	ctx := context.Background()
	cache, err := NewShardedCache(8, 0)
	require.NoError(t, err)
	defer cache.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("report:%d", i), []byte(fmt.Sprint(i)), time.Minute))
	}
	value, found, err := cache.Get(ctx, "report:42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "42", string(value))

	require.NoError(t, cache.Delete(ctx, "report:42"))
	_, found, _ = cache.Get(ctx, "report:42")
	assert.False(t, found)

	require.NoError(t, cache.Clear(ctx))
	_, found, _ = cache.Get(ctx, "report:7")
	assert.False(t, found)
}

func TestShardedCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache, err := NewShardedCache(16, 0)
	require.NoError(t, err)
	defer cache.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d:%d", g, i)
				_ = cache.Set(ctx, key, []byte(key), time.Minute)
				_, _, _ = cache.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	value, found, err := cache.Get(ctx, "g3:150")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "g3:150", string(value))
}

func TestFnv32_Deterministic(t *testing.T) {
	assert.Equal(t, fnv32("report:sample:no"), fnv32("report:sample:no"))
	assert.NotEqual(t, fnv32("a"), fnv32("b"))
	assert.Equal(t, uint32(2166136261), fnv32(""))
}

// ========================================
// Tests: RedisCache
// ========================================

func TestRedisCache_Get(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, "materialroi")

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("materialroi:k1").SetVal("payload")

		value, found, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("payload"), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet("materialroi:k2").RedisNil()

		value, found, err := cache.Get(ctx, "k2")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectGet("materialroi:k3").SetErr(redis.TxFailedErr)

		_, found, err := cache.Get(ctx, "k3")
		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, errors.Is(err, redis.TxFailedErr))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCache_SetDelete(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, "")

	value := []byte("payload")
	mock.ExpectSet("k", value, time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))

	mock.ExpectSet("k", value, time.Minute).SetErr(redis.TxFailedErr)
	assert.Error(t, cache.Set(ctx, "k", value, time.Minute))

	mock.ExpectDel("k").SetVal(1)
	require.NoError(t, cache.Delete(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Clear(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, "roi")

	mock.ExpectScan(0, "roi:*", 100).SetVal([]string{"roi:a", "roi:b"}, 0)
	mock.ExpectDel("roi:a", "roi:b").SetVal(2)
	require.NoError(t, cache.Clear(ctx))

	mock.ExpectScan(0, "roi:*", 100).SetVal([]string{}, 0)
	require.NoError(t, cache.Clear(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_ClearWithoutPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, "")

	// aucune commande SCAN/DEL ne doit partir vers Redis
	assert.ErrorIs(t, cache.Clear(context.Background()), ErrUnscopedClear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ========================================
// Tests: CacheKeyBuilder / NopCache
// ========================================

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder().
		Add("report").
		Add("sample").
		AddFlag(true).
		Add("2024-03").
		Build()
	assert.Equal(t, "report:sample:yes:2024-03", key)

	assert.Equal(t, "", NewCacheKeyBuilder().Build())
	assert.Equal(t, "no", NewCacheKeyBuilder().AddFlag(false).Build())
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var cache Cache = NopCache{}

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
	assert.NoError(t, cache.Clear(ctx))
}

// ========================================
// Benchmarks: InMemoryCache vs ShardedCache
// ========================================

func BenchmarkInMemoryCache_Get_HighContention(b *testing.B) {
	ctx := context.Background()
	cache := NewInMemoryCache(0)
	defer cache.Close()
	_ = cache.Set(ctx, "shared_key", []byte("shared_value"), 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = cache.Get(ctx, "shared_key")
		}
	})
}

func BenchmarkShardedCache_Mixed_80Read_20Write(b *testing.B) {
	ctx := context.Background()
	cache, err := NewShardedCache(16, 0)
	if err != nil {
		b.Fatal(err)
	}
	defer cache.Close()

	for i := 0; i < 1000; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("key%d", i), []byte("value"), 5*time.Minute)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key%d", i%1000)
			if i%5 == 0 {
				_ = cache.Set(ctx, key, []byte("new_value"), 5*time.Minute)
			} else {
				_, _, _ = cache.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkCacheKeyBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = NewCacheKeyBuilder().Add("report").Add("sample").AddFlag(false).Add("region=华东").Build()
	}
}
