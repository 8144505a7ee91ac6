package main

import (
	"time"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/config"
	datasource "stock-dashboard/src/data_source"
	"stock-dashboard/src/data_source/yahoo"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/live"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/network"
	"stock-dashboard/src/session"
	"stock-dashboard/src/storage"
	"stock-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// setupCache initializes the bar cache. The cache is only an optimisation,
// so a failure falls back to no caching instead of stopping startup.
func setupCache(conf *config.Config, appLogger *logger.Logger) interfaces.IBarCache {
	cache, err := storage.NewBarCache(conf.MConfig, appLogger.Named("BarCache"))
	if err != nil {
		appLogger.Warning("Bar cache unavailable, continuing without it: %v", err)
		return storage.NoopCache{}
	}
	appLogger.Info("Bar cache: %s", cache.Type())
	return cache
}

// -----------------------------------------------------------------------------

// setupMarketData wires the network manager, provider and cache together.
func setupMarketData(conf *config.Config, cache interfaces.IBarCache, appLogger *logger.Logger) *datasource.MarketDataService {
	var networkManager interfaces.INetworkManager = network.NewFetcher(conf.MConfig, appLogger.Named("Network"))
	provider := yahoo.NewYahooFinanceSource(conf.DataSource, networkManager, appLogger.Named("Yahoo"))
	appLogger.Info("Market data provider: %s", provider.Name())
	return datasource.NewMarketDataService(provider, cache, conf.DataSource.SearchResults, appLogger.Named("MarketData"))
}

// -----------------------------------------------------------------------------

func setupAnalysis(conf *config.Config, appLogger *logger.Logger) *analysis.Analyzer {
	return analysis.NewAnalyzer(conf.Indicators, appLogger.Named("Analysis"))
}

// -----------------------------------------------------------------------------

// setupSessions builds the session store with the configured defaults.
func setupSessions(conf *config.Config, appLogger *logger.Logger) *session.Store {
	tf, err := models.ParseTimeframe(conf.Dashboard.DefaultTimeframe)
	if err != nil {
		tf = models.DefaultTimeframe
	}
	defaults := session.NewState(conf.Dashboard.DefaultTicker, tf, conf.Watchlist())
	ttl := time.Duration(conf.Auth.SessionTTLMinutes) * time.Minute
	return session.NewStore(ttl, defaults, appLogger.Named("Sessions"))
}

// -----------------------------------------------------------------------------

func setupRefresher(
	conf *config.Config,
	market interfaces.IQuoteService,
	analyzer *analysis.Analyzer,
	ticks *utils.TickStore,
	scheduler *utils.MarketScheduler,
	exchange interfaces.IDataExchanger,
	sessions *session.Store,
	appLogger *logger.Logger,
) (*live.Refresher, error) {
	r := live.NewRefresher(conf, market, analyzer, ticks, scheduler, exchange, sessions, appLogger.Named("Refresher"))
	if err := r.Register(); err != nil {
		return nil, err
	}
	return r, nil
}
