package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Auth       MAuthConfig       `yaml:"auth"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Dashboard  MDashboardConfig  `yaml:"dashboard"`
	Indicators MIndicatorConfig  `yaml:"indicators"`
	Live       MLiveConfig       `yaml:"live"`
}

type MAuthConfig struct {
	Password          string `yaml:"password"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	CookieName        string `yaml:"cookie_name"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // sqlite | postgres | none
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"schema"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Name          string `yaml:"name"`
	ChartBaseURL  string `yaml:"chart_base_url"`
	QuoteBaseURL  string `yaml:"quote_base_url"`
	SearchBaseURL string `yaml:"search_base_url"`
	SearchResults int    `yaml:"search_results"`
	NewsResults   int    `yaml:"news_results"`
}

type MDashboardConfig struct {
	DefaultTicker    string   `yaml:"default_ticker"`
	DefaultTimeframe string   `yaml:"default_timeframe"`
	Watchlist        []string `yaml:"watchlist"`
	ChartMaxPoints   int      `yaml:"chart_max_points"`
}

type MIndicatorConfig struct {
	SMAShort   int     `yaml:"sma_short"`
	SMALong    int     `yaml:"sma_long"`
	RSIPeriod  int     `yaml:"rsi_period"`
	Oversold   float64 `yaml:"rsi_oversold"`
	Overbought float64 `yaml:"rsi_overbought"`
}

type MLiveConfig struct {
	Enabled      bool   `yaml:"enabled"`
	RefreshCron  string `yaml:"refresh_cron"`
	JanitorCron  string `yaml:"janitor_cron"`
	ForceRefresh bool   `yaml:"force_refresh"`
	TickCapacity int    `yaml:"tick_capacity"`
}
