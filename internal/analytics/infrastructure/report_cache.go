package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"materialroi/internal/analytics/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
)

// ReportCache sérialise les rapports en JSON au-dessus d'un cache d'octets (mémoire ou Redis).
// Chaque lecture retourne une copie indépendante du rapport.
type ReportCache struct {
	cache sharedinfra.Cache
	ttl   time.Duration
}

// NewReportCache crée un cache de rapports
func NewReportCache(cache sharedinfra.Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{cache: cache, ttl: ttl}
}

// Get lit un rapport; une entrée illisible est supprimée et traitée comme absente
func (c *ReportCache) Get(ctx context.Context, key string) (*domain.Report, bool, error) {
	data, found, err := c.cache.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		_ = c.cache.Delete(ctx, key)
		return nil, false, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return &report, true, nil
}

// Set écrit un rapport avec le TTL configuré
func (c *ReportCache) Set(ctx context.Context, key string, report *domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// Clear vide le cache sous-jacent
func (c *ReportCache) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx)
}
