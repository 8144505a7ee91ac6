package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/config"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
	"stock-dashboard/src/session"
	"stock-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config    *config.Config
	Logger    *logger.Logger
	Market    interfaces.IQuoteService
	Analyzer  *analysis.Analyzer
	Sessions  *session.Store
	Ticks     *utils.TickStore
	Scheduler *utils.MarketScheduler

	engine    *gin.Engine
	httpSrv   *http.Server
	resampler analysis.TimeSeriesResampler

	// WebSocket clients
	clients    map[*liveClient]struct{}
	broadcast  chan *models.MLiveSnapshot // Strongly typed and Buffered Queue
	register   chan *liveClient
	unregister chan *liveClient
	resync     chan *liveClient
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MLiveSnapshot
	stateMutex  sync.RWMutex
	clientCount int
}

// Deps groups the collaborators the server renders from.
type Deps struct {
	Market    interfaces.IQuoteService
	Analyzer  *analysis.Analyzer
	Sessions  *session.Store
	Ticks     *utils.TickStore
	Scheduler *utils.MarketScheduler
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *config.Config, deps Deps, log *logger.Logger) (*DashboardServer, error) {
	if log == nil {
		log = logger.Discard()
	}
	if deps.Market == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("dashboard server needs a quote service and a session store")
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.NewAnalyzer(cfg.Indicators, log.Named("analysis"))
	}
	if deps.Ticks == nil {
		deps.Ticks = utils.NewTickStore(cfg.Live.TickCapacity)
	}
	if deps.Scheduler == nil {
		deps.Scheduler = utils.NewMarketScheduler(cfg.Watchlist(), log.Named("calendar"))
	}

	// Set Gin mode
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &DashboardServer{
		Config:    cfg,
		Logger:    log,
		Market:    deps.Market,
		Analyzer:  deps.Analyzer,
		Sessions:  deps.Sessions,
		Ticks:     deps.Ticks,
		Scheduler: deps.Scheduler,
		engine:    gin.New(),
		clients:   make(map[*liveClient]struct{}),
		// Queue size of 256 absorbs refresh bursts
		broadcast:  make(chan *models.MLiveSnapshot, 256),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		resync:     make(chan *liveClient),
		done:       make(chan struct{}),
		latestState: &models.MLiveSnapshot{
			Type:  "INITIAL",
			Ticks: make(map[string]models.MTick),
		},
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(tmpl)

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s, nil
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	s.engine.Use(s.sessionMiddleware())

	// Open routes
	s.engine.GET("/login", s.getLogin)
	s.engine.POST("/login", s.postLogin)
	s.engine.GET("/logout", s.getLogout)
	s.engine.GET("/api/health", s.getHealth)

	// HTML pages
	pages := s.engine.Group("/", s.requireAuth())
	pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/stock") })
	pages.GET("/stock", s.getStock)
	pages.GET("/search", s.getSearch)
	pages.GET("/watchlist", s.getWatchlist)
	pages.POST("/watchlist/add", s.postWatchlistAdd)
	pages.POST("/watchlist/remove", s.postWatchlistRemove)
	pages.GET("/sip", s.getSIP)

	// REST API endpoints
	api := s.engine.Group("/api", s.requireAuth())
	api.GET("/quote/:ticker", s.apiQuote)
	api.GET("/search", s.apiSearch)
	api.GET("/sip", s.apiSIP)
	api.GET("/ticks/:ticker", s.apiTicks)
	api.GET("/config", s.apiConfig)

	// WebSocket endpoint
	s.engine.GET("/ws", s.requireAuth(), s.handleWebSocket)
}

// Handler exposes the router, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and blocks serving HTTP until Stop is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard on http://%s", addr)

	go s.handleWebsockets()

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	log := s.Logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := s.clientCount
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"sessions":      s.Sessions.Count(),
		"cache":         s.Market.CacheType(),
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) apiConfig(c *gin.Context) {
	type timeframe struct {
		Name  models.Timeframe `json:"name"`
		Label string           `json:"label"`
	}
	tfs := make([]timeframe, 0, 4)
	for _, tf := range models.AllTimeframes() {
		tfs = append(tfs, timeframe{Name: tf, Label: tf.Label()})
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframes":        tfs,
		"default_timeframe": s.Config.Dashboard.DefaultTimeframe,
		"default_ticker":    s.Config.Dashboard.DefaultTicker,
		"watchlist":         s.Config.Watchlist(),
		"indicators":        s.Config.Indicators,
	})
}
