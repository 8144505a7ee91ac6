package live

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/config"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/session"
	"stock-dashboard/src/utils"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// fetchLimit bounds concurrent provider calls per refresh.
const fetchLimit = 4

// -----------------------------------------------------------------------------
// Refresher polls intraday quotes for the default watchlist on a cron
// schedule and pushes them to the websocket hub.
// -----------------------------------------------------------------------------

type Refresher struct {
	Config    *config.Config
	Market    interfaces.IQuoteService
	Analyzer  *analysis.Analyzer
	Ticks     *utils.TickStore
	Scheduler *utils.MarketScheduler
	Exchange  interfaces.IDataExchanger
	Sessions  *session.Store
	Logger    *logger.Logger
	Cron      *cron.Cron

	// marketsOpen gates refreshes; defaults to Scheduler.AnyMarketOpen
	marketsOpen func() bool
	running     int32
	now         func() time.Time
}

// -----------------------------------------------------------------------------

func NewRefresher(cfg *config.Config, market interfaces.IQuoteService, analyzer *analysis.Analyzer,
	ticks *utils.TickStore, scheduler *utils.MarketScheduler, exchange interfaces.IDataExchanger,
	sessions *session.Store, log *logger.Logger) *Refresher {

	if log == nil {
		log = logger.Discard()
	}
	r := &Refresher{
		Config:    cfg,
		Market:    market,
		Analyzer:  analyzer,
		Ticks:     ticks,
		Scheduler: scheduler,
		Exchange:  exchange,
		Sessions:  sessions,
		Logger:    log,
		now:       time.Now,
	}
	r.marketsOpen = scheduler.AnyMarketOpen
	r.Cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))
	return r
}

// -----------------------------------------------------------------------------

// Register adds the refresh and janitor jobs from config.
func (r *Refresher) Register() error {
	if r.Config.Live.Enabled {
		if _, err := r.Cron.AddFunc(r.Config.Live.RefreshCron, r.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if _, err := r.Cron.AddFunc(r.Config.Live.JanitorCron, r.Janitor); err != nil {
		return fmt.Errorf("register janitor task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (r *Refresher) Start() {
	r.Cron.Start()
	r.Logger.Info("Refresher started (refresh=%q enabled=%v, janitor=%q)",
		r.Config.Live.RefreshCron, r.Config.Live.Enabled, r.Config.Live.JanitorCron)
}

// Stop stops the scheduler and waits for running jobs.
func (r *Refresher) Stop() {
	<-r.Cron.Stop().Done()
	r.Logger.Info("Refresher stopped")
}

// -----------------------------------------------------------------------------

func (r *Refresher) refreshTask() {
	timeout := time.Duration(r.Config.Network.RequestTimeout) * time.Second * 3
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	r.RefreshOnce(ctx)
}

// RefreshOnce fetches every watchlist symbol and broadcasts the result. It
// returns nil when skipped because no tracked market is open or a previous
// run is still in flight.
func (r *Refresher) RefreshOnce(ctx context.Context) *models.MLiveSnapshot {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		r.Logger.Debug("Refresh already running, skipping")
		return nil
	}
	defer atomic.StoreInt32(&r.running, 0)

	symbols := r.Config.Watchlist()
	r.Scheduler.UpdateSymbols(symbols)
	r.Ticks.Retain(symbols)

	open := r.marketsOpen()
	if !open && !r.Config.Live.ForceRefresh {
		r.Logger.Debug("All tracked markets closed, skipping refresh")
		return nil
	}

	start := r.now()
	var (
		mu          sync.Mutex
		unavailable []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for _, sym := range symbols {
		g.Go(func() error {
			tick, err := r.fetchTick(gctx, sym)
			if err != nil {
				r.Logger.Warning("Refresh %s: %v", sym, err)
				mu.Lock()
				unavailable = append(unavailable, sym)
				mu.Unlock()
				return nil
			}
			r.Ticks.AddTick(tick)
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(unavailable)

	snap := &models.MLiveSnapshot{
		Type:        "UPDATE",
		Ticks:       r.Ticks.Latest(),
		Unavailable: unavailable,
		MarketsOpen: open,
		Timestamp:   r.now().Unix(),
		Metrics: models.MRefreshMetrics{
			DurationSeconds: r.now().Sub(start).Seconds(),
			Symbols:         len(symbols),
			Failed:          len(unavailable),
		},
	}

	if r.Exchange != nil {
		r.Exchange.Broadcast(snap)
	}
	r.Logger.Info("Refreshed %d symbols (%d unavailable) in %.2fs",
		len(symbols), len(unavailable), snap.Metrics.DurationSeconds)
	return snap
}

// fetchTick turns the latest intraday bar into a tick.
func (r *Refresher) fetchTick(ctx context.Context, symbol string) (models.MTick, error) {
	quote, err := r.Market.Quote(ctx, symbol, models.Timeframe1D)
	if err != nil {
		return models.MTick{}, err
	}
	ind, err := r.Analyzer.Analyze(quote.Series)
	if err != nil {
		return models.MTick{}, err
	}
	last, _ := quote.Series.Last()
	return models.MTick{
		Symbol:        quote.Series.Symbol,
		Price:         ind.LastPrice,
		PercentChange: ind.PercentChange.Or(0),
		Volume:        last.Volume,
		Timestamp:     last.Timestamp,
	}, nil
}

// -----------------------------------------------------------------------------

// Janitor drops idle sessions and cache rows too old for any timeframe.
func (r *Refresher) Janitor() {
	if r.Sessions != nil {
		r.Sessions.PurgeExpired()
	}
	if err := r.Market.PurgeCache(maxCacheTTL()); err != nil {
		r.Logger.Warning("Cache purge failed: %v", err)
	}
}

func maxCacheTTL() time.Duration {
	var ttl time.Duration
	for _, tf := range models.AllTimeframes() {
		if tf.CacheTTL() > ttl {
			ttl = tf.CacheTTL()
		}
	}
	return ttl
}

// -----------------------------------------------------------------------------

// cronLogger routes cron's own messages into the component logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
