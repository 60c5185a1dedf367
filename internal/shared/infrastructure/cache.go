package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache interface pour l'abstraction du cache.
// Les valeurs sont des octets sérialisés: un même rapport peut ainsi vivre en mémoire ou dans Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheEntry représente une entrée de cache avec expiration
type CacheEntry struct {
	Value      []byte
	Expiration time.Time
}

// IsExpired vérifie si l'entrée est expirée
func (e CacheEntry) IsExpired(now time.Time) bool {
	return now.After(e.Expiration)
}

// InMemoryCache implémentation en mémoire du cache avec TTL
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewInMemoryCache crée un nouveau cache en mémoire et lance son nettoyage périodique
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupExpired(cleanupInterval)
	}
	return c
}

// Get récupère une copie de la valeur
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.IsExpired(c.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), entry.Value...), true, nil
}

// Set ajoute ou met à jour une valeur dans le cache
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CacheEntry{
		Value:      append([]byte(nil), value...),
		Expiration: c.now().Add(ttl),
	}
	return nil
}

// Delete supprime une entrée du cache
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear vide complètement le cache
func (c *InMemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
	return nil
}

// Len retourne le nombre d'entrées, expirées comprises
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close arrête le nettoyage périodique
func (c *InMemoryCache) Close() {
	c.once.Do(func() { close(c.done) })
}

// purge supprime les entrées expirées
func (c *InMemoryCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
		}
	}
}

func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

// ShardedCache cache avec sharding pour réduire la contention
type ShardedCache struct {
	shards    []*InMemoryCache
	shardMask uint32
}

// NewShardedCache crée un cache avec sharding; shardCount doit être une puissance de 2
func NewShardedCache(shardCount int, cleanupInterval time.Duration) (*ShardedCache, error) {
	if shardCount <= 0 || (shardCount&(shardCount-1)) != 0 {
		return nil, fmt.Errorf("shard count must be a power of 2, got %d", shardCount)
	}

	shards := make([]*InMemoryCache, shardCount)
	for i := range shards {
		shards[i] = NewInMemoryCache(cleanupInterval)
	}

	return &ShardedCache{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
	}, nil
}

func (sc *ShardedCache) getShard(key string) *InMemoryCache {
	return sc.shards[fnv32(key)&sc.shardMask]
}

// Get récupère une valeur du cache
func (sc *ShardedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return sc.getShard(key).Get(ctx, key)
}

// Set ajoute ou met à jour une valeur dans le cache
func (sc *ShardedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return sc.getShard(key).Set(ctx, key, value, ttl)
}

// Delete supprime une entrée du cache
func (sc *ShardedCache) Delete(ctx context.Context, key string) error {
	return sc.getShard(key).Delete(ctx, key)
}

// Clear vide tous les shards
func (sc *ShardedCache) Clear(ctx context.Context) error {
	for _, shard := range sc.shards {
		_ = shard.Clear(ctx)
	}
	return nil
}

// Close arrête le nettoyage de tous les shards
func (sc *ShardedCache) Close() {
	for _, shard := range sc.shards {
		shard.Close()
	}
}

// fnv32 calcule un hash FNV-1a 32-bit pour le sharding
func fnv32(key string) uint32 {
	hash := uint32(2166136261)
	const prime32 = uint32(16777619)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

// RedisCache implémente Cache sur Redis; toutes les clés sont préfixées
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache crée un cache Redis
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (rc *RedisCache) key(key string) string {
	if rc.prefix == "" {
		return key
	}
	return rc.prefix + ":" + key
}

// Get récupère une valeur; une clé absente n'est pas une erreur
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set écrit une valeur avec expiration
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rc.client.Set(ctx, rc.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete supprime une clé
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, rc.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// ErrUnscopedClear est retourné par Clear quand aucun préfixe ne délimite les clés du cache
var ErrUnscopedClear = errors.New("redis cache without key prefix cannot be cleared")

// Clear supprime toutes les clés du préfixe; sans préfixe, rien n'est supprimé
func (rc *RedisCache) Clear(ctx context.Context) error {
	if rc.prefix == "" {
		return ErrUnscopedClear
	}
	iter := rc.client.Scan(ctx, 0, rc.key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// NopCache ne conserve rien; utilisé quand le cache est désactivé
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NopCache) Delete(context.Context, string) error {
	return nil
}

func (NopCache) Clear(context.Context) error {
	return nil
}

// CacheKeyBuilder aide à construire des clés de cache cohérentes
type CacheKeyBuilder struct {
	sb strings.Builder
	n  int
}

// NewCacheKeyBuilder crée un nouveau builder de clé
func NewCacheKeyBuilder() *CacheKeyBuilder {
	return &CacheKeyBuilder{}
}

// Add ajoute une partie à la clé
func (b *CacheKeyBuilder) Add(part string) *CacheKeyBuilder {
	if b.n > 0 {
		b.sb.WriteByte(':')
	}
	b.sb.WriteString(part)
	b.n++
	return b
}

// AddFlag ajoute "yes" ou "no"
func (b *CacheKeyBuilder) AddFlag(value bool) *CacheKeyBuilder {
	if value {
		return b.Add("yes")
	}
	return b.Add("no")
}

// Build construit la clé finale
func (b *CacheKeyBuilder) Build() string {
	return b.sb.String()
}
