package main

import (
	"fmt"
	"net"

	"stock-dashboard/src/analysis"
	"stock-dashboard/src/config"
	pb "stock-dashboard/src/grpc_control"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/server"
	"stock-dashboard/src/session"
	"stock-dashboard/src/utils"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startDashboard builds the web server and serves it in the background.
func startDashboard(
	conf *config.Config,
	market interfaces.IQuoteService,
	analyzer *analysis.Analyzer,
	sessions *session.Store,
	ticks *utils.TickStore,
	scheduler *utils.MarketScheduler,
	appLogger *logger.Logger,
) (*server.DashboardServer, error) {
	srv, err := server.NewDashboardServer(conf, server.Deps{
		Market:    market,
		Analyzer:  analyzer,
		Sessions:  sessions,
		Ticks:     ticks,
		Scheduler: scheduler,
	}, appLogger.Named("DashboardServer"))
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()
	return srv, nil
}

// -----------------------------------------------------------------------------

// startControl serves the gRPC control service when grpc_port is set.
func startControl(
	conf *config.Config,
	configPath string,
	sessions *session.Store,
	scheduler *utils.MarketScheduler,
	ticks *utils.TickStore,
	market interfaces.IQuoteService,
	exchange interfaces.IDataExchanger,
	appLogger *logger.Logger,
) *grpc.Server {
	if conf.GrpcPort == 0 {
		appLogger.Info("gRPC control disabled (grpc_port not set)")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", conf.GrpcHost, conf.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error("Failed to listen for gRPC on %s: %v", addr, err)
		return nil
	}

	grpcServer := grpc.NewServer()
	controlService := pb.NewControlService(conf, configPath, sessions, scheduler, ticks, market, exchange, appLogger.Named("ControlService"))
	pb.RegisterDashboardControlServer(grpcServer, controlService)

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped: %v", err)
		}
	}()
	return grpcServer
}
