package storage

import (
	"fmt"

	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

// NewBarCache builds and initialises the cache selected by storage.db_type.
func NewBarCache(cfg *models.MConfig, log *logger.Logger) (interfaces.IBarCache, error) {
	var cache interfaces.IBarCache
	switch cfg.Storage.DBType {
	case "", "sqlite":
		cache = NewSQLiteCache(cfg, log)
	case "postgres":
		cache = NewPostgresCache(cfg, log)
	case "none":
		cache = NoopCache{}
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
	}

	if err := cache.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s cache: %w", cache.Type(), err)
	}
	return cache, nil
}
