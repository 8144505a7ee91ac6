package storage

import (
	"time"

	"stock-dashboard/src/models"
)

// NoopCache never stores anything; every quote goes to the provider.
type NoopCache struct{}

func (NoopCache) Initialize() error { return nil }
func (NoopCache) Type() string      { return "none" }
func (NoopCache) Close() error      { return nil }

func (NoopCache) Get(string, models.Timeframe, time.Duration) (models.MSeries, bool, error) {
	return models.MSeries{}, false, nil
}

func (NoopCache) Put(models.MSeries) error  { return nil }
func (NoopCache) Purge(time.Duration) error { return nil }
