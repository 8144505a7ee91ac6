package grpc_control

import (
	"context"

	"stock-dashboard/src/config"
	"stock-dashboard/src/data_source/yahoo"
	"stock-dashboard/src/interfaces"
	"stock-dashboard/src/logger"
	"stock-dashboard/src/session"
	"stock-dashboard/src/utils"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements DashboardControlServer over the live config.
type ControlService struct {
	Config     *config.Config
	ConfigPath string
	Sessions   *session.Store
	Scheduler  *utils.MarketScheduler
	Ticks      *utils.TickStore
	Market     interfaces.IQuoteService
	Exchange   interfaces.IDataExchanger
	Logger     *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	cfg *config.Config,
	cfgPath string,
	sessions *session.Store,
	scheduler *utils.MarketScheduler,
	ticks *utils.TickStore,
	market interfaces.IQuoteService,
	exchange interfaces.IDataExchanger,
	log *logger.Logger,
) *ControlService {
	if log == nil {
		log = logger.Discard()
	}
	return &ControlService{
		Config:     cfg,
		ConfigPath: cfgPath,
		Sessions:   sessions,
		Scheduler:  scheduler,
		Ticks:      ticks,
		Market:     market,
		Exchange:   exchange,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListWatchlist(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	return watchlistValue(s.Config.Watchlist())
}

// -----------------------------------------------------------------------------

func (s *ControlService) AddSymbol(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	symbol, err := yahoo.NormalizeTicker(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid symbol %q", req.GetValue())
	}

	if s.Config.AddWatchlistSymbol(symbol) {
		s.Logger.Info("gRPC: added %s to the default watchlist", symbol)
		s.applyWatchlist()
	}
	return watchlistValue(s.Config.Watchlist())
}

// -----------------------------------------------------------------------------

func (s *ControlService) RemoveSymbol(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	symbol, err := yahoo.NormalizeTicker(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid symbol %q", req.GetValue())
	}

	if !s.Config.RemoveWatchlistSymbol(symbol) {
		return nil, status.Errorf(codes.NotFound, "%s is not in the default watchlist", symbol)
	}
	s.Logger.Info("gRPC: removed %s from the default watchlist", symbol)
	s.applyWatchlist()
	return watchlistValue(s.Config.Watchlist())
}

// applyWatchlist pushes the new default watchlist to everything that tracks
// it and persists the config. A failed save keeps the in-memory change.
func (s *ControlService) applyWatchlist() {
	watchlist := s.Config.Watchlist()
	if s.Sessions != nil {
		s.Sessions.SetDefaultWatchlist(watchlist)
	}
	if s.Scheduler != nil {
		s.Scheduler.UpdateSymbols(watchlist)
	}
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Error("gRPC: failed to persist watchlist: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"watchlist_size": len(s.Config.Watchlist()),
	}
	if s.Sessions != nil {
		fields["sessions"] = s.Sessions.Count()
	}
	if s.Exchange != nil {
		fields["ws_clients"] = s.Exchange.ClientCount()
	}
	if s.Market != nil {
		fields["cache"] = s.Market.CacheType()
	}
	if s.Scheduler != nil {
		fields["markets_open"] = s.Scheduler.AnyMarketOpen()
	}
	if s.Ticks != nil {
		fields["live_symbols"] = s.Ticks.SymbolCount()
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build status: %v", err)
	}
	return st, nil
}

// -----------------------------------------------------------------------------

func watchlistValue(symbols []string) (*structpb.ListValue, error) {
	items := make([]interface{}, len(symbols))
	for i, s := range symbols {
		items[i] = s
	}
	lv, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build watchlist: %v", err)
	}
	return lv, nil
}
