package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetops/internal/core/cache"
	"fleetops/internal/core/logger"
	"fleetops/internal/features/alerts/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	settingsCacheKey = "alerts:thresholds"
	settingsCacheTTL = 5 * time.Minute
)

// PostgresSettingsSource reads threshold key/value pairs from the settings
// table.
type PostgresSettingsSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingsSource creates a new PostgresSettingsSource.
func NewPostgresSettingsSource(pool *pgxpool.Pool) *PostgresSettingsSource {
	return &PostgresSettingsSource{pool: pool}
}

// Fetch returns all settings rows as a key/value map.
func (s *PostgresSettingsSource) Fetch(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

// SettingsSource fetches raw settings values from the backing store.
type SettingsSource interface {
	Fetch(ctx context.Context) (map[string]string, error)
}

// CachedSettingsProvider implements ports.SettingsProvider with a cache-aside
// layer over the settings store. A failure anywhere falls back to the last
// known cached value or the defaults; Load never fails, the evaluator must
// keep running with stale or default thresholds.
type CachedSettingsProvider struct {
	source SettingsSource
	cache  cache.Cache
	logger *zap.Logger
}

// NewCachedSettingsProvider creates a new CachedSettingsProvider.
func NewCachedSettingsProvider(source SettingsSource, c cache.Cache) *CachedSettingsProvider {
	return &CachedSettingsProvider{
		source: source,
		cache:  c,
		logger: logger.Get(),
	}
}

// Load returns the current evaluation thresholds.
func (p *CachedSettingsProvider) Load(ctx context.Context) domain.Thresholds {
	if cached, err := p.cache.Get(ctx, settingsCacheKey); err == nil {
		var th domain.Thresholds
		unmarshalErr := json.Unmarshal(cached, &th)
		if unmarshalErr == nil {
			return th
		}
		p.logger.Warn("Discarding corrupt cached thresholds", zap.Error(unmarshalErr))
	}

	values, err := p.source.Fetch(ctx)
	if err != nil {
		p.logger.Warn("Failed to load settings, using default thresholds", zap.Error(err))
		return domain.DefaultThresholds()
	}

	th := domain.ParseThresholds(values)
	if encoded, err := json.Marshal(th); err == nil {
		if err := p.cache.Set(ctx, settingsCacheKey, encoded, settingsCacheTTL); err != nil {
			p.logger.Warn("Failed to cache thresholds", zap.Error(err))
		}
	}
	return th
}
