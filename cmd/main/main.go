package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-dashboard/src/config"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/utils"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Setup Components
	cache := setupCache(conf, appLogger)
	defer cache.Close()

	market := setupMarketData(conf, cache, appLogger)
	analyzer := setupAnalysis(conf, appLogger)
	sessions := setupSessions(conf, appLogger)
	ticks := utils.NewTickStore(conf.Live.TickCapacity)
	scheduler := utils.NewMarketScheduler(conf.Watchlist(), appLogger.Named("MarketScheduler"))

	// 5. Start Servers
	srv, err := startDashboard(conf, market, analyzer, sessions, ticks, scheduler, appLogger)
	if err != nil {
		appLogger.Critical("Failed to start dashboard: %v", err)
	}
	grpcServer := startControl(conf, *configPath, sessions, scheduler, ticks, market, srv, appLogger)

	// 6. Live refresh and janitor jobs
	refresher, err := setupRefresher(conf, market, analyzer, ticks, scheduler, srv, sessions, appLogger)
	if err != nil {
		appLogger.Critical("Failed to schedule jobs: %v", err)
	}
	refresher.Start()

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")

	refresher.Stop()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("Dashboard shutdown: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}
