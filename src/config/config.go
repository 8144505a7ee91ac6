package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"stock-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, read after the YAML file and an optional .env file.
const (
	EnvPassword = "DASHBOARD_PASSWORD"
	EnvPort     = "DASHBOARD_PORT"
	EnvLogLevel = "DASHBOARD_LOG_LEVEL"
)

// Defaults for fields where an explicit zero is meaningful (no retries, no
// news). These are seeded before the YAML is decoded so only an absent key
// picks them up.
const (
	DefaultMaxRetries  = 2
	DefaultNewsResults = 5
)

// DefaultWatchlist is the starting watchlist when the file names none.
var DefaultWatchlist = []string{"RELIANCE.NS", "AAPL", "TSLA", "TCS.NS", "NVDA", "ZOMATO.NS"}

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// Path is where Save writes by default.
	Path string

	// values as read from the file, before environment overrides
	filePassword string
	filePort     int
	fileLogLevel string

	mu sync.RWMutex
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, an optional .env file next
// to the working directory and the process environment.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	modelConfig := newSeededModel()
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: modelConfig, Path: configPath}
	config.ApplyDefaults()

	// 3. Environment overrides; a missing .env is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// newSeededModel returns an MConfig holding the zero-allowed defaults.
func newSeededModel() *models.MConfig {
	m := &models.MConfig{}
	m.Network.MaxRetries = DefaultMaxRetries
	m.DataSource.NewsResults = DefaultNewsResults
	return m
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{MConfig: newSeededModel()}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills unset fields with their defaults. Zero retries and zero
// news results are valid settings and are left alone; see Default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "stock-dashboard"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = "127.0.0.1"
	}

	if c.Auth.SessionTTLMinutes == 0 {
		c.Auth.SessionTTLMinutes = 12 * 60
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "dashboard_session"
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "file::memory:?cache=shared"
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}

	if c.DataSource.Name == "" {
		c.DataSource.Name = "yahoo"
	}
	if c.DataSource.SearchResults == 0 {
		c.DataSource.SearchResults = 8
	}

	if c.Dashboard.DefaultTicker == "" {
		c.Dashboard.DefaultTicker = "RELIANCE.NS"
	}
	if c.Dashboard.DefaultTimeframe == "" {
		c.Dashboard.DefaultTimeframe = string(models.DefaultTimeframe)
	}
	if c.Dashboard.Watchlist == nil {
		c.Dashboard.Watchlist = append([]string(nil), DefaultWatchlist...)
	}
	if c.Dashboard.ChartMaxPoints == 0 {
		c.Dashboard.ChartMaxPoints = 400
	}

	if c.Indicators.SMAShort == 0 {
		c.Indicators.SMAShort = 20
	}
	if c.Indicators.SMALong == 0 {
		c.Indicators.SMALong = 50
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.Oversold == 0 {
		c.Indicators.Oversold = 30
	}
	if c.Indicators.Overbought == 0 {
		c.Indicators.Overbought = 70
	}

	if c.Live.RefreshCron == "" {
		c.Live.RefreshCron = "@every 1m"
	}
	if c.Live.JanitorCron == "" {
		c.Live.JanitorCron = "@every 10m"
	}
	if c.Live.TickCapacity == 0 {
		c.Live.TickCapacity = 400
	}
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides password, port and log level from the environment.
// The file values are remembered so Save never writes secrets back.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	c.filePassword = c.Auth.Password
	c.filePort = c.Port
	c.fileLogLevel = c.LogLevel

	if v := getenv(EnvPassword); v != "" {
		c.Auth.Password = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToUpper(v)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "CRITICAL":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535 || c.GrpcPort == c.Port) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	if c.Auth.Password == "" {
		return fmt.Errorf("auth password cannot be empty (set auth.password or %s)", EnvPassword)
	}
	if c.Auth.SessionTTLMinutes < 0 {
		return fmt.Errorf("session ttl cannot be negative")
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "none":
	default:
		return fmt.Errorf("unknown database type %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.DataSource.NewsResults < 0 {
		return fmt.Errorf("news results cannot be negative")
	}

	if _, err := models.ParseTimeframe(c.Dashboard.DefaultTimeframe); err != nil {
		return fmt.Errorf("dashboard default timeframe: %w", err)
	}
	if c.Dashboard.ChartMaxPoints < 0 {
		return fmt.Errorf("chart max points cannot be negative")
	}

	ind := c.Indicators
	if ind.SMAShort <= 0 || ind.SMALong <= 0 || ind.RSIPeriod <= 0 {
		return fmt.Errorf("indicator windows must be greater than 0")
	}
	if ind.Oversold < 0 || ind.Overbought > 100 || ind.Oversold >= ind.Overbought {
		return fmt.Errorf("rsi thresholds must satisfy 0 <= oversold < overbought <= 100")
	}

	if c.Live.TickCapacity < 0 {
		return fmt.Errorf("tick capacity cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Watchlist returns a copy of the server-wide default watchlist.
func (c *Config) Watchlist() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.Dashboard.Watchlist...)
}

// AddWatchlistSymbol appends a symbol if absent and reports whether it changed.
func (c *Config) AddWatchlistSymbol(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.Dashboard.Watchlist {
		if s == symbol {
			return false
		}
	}
	c.Dashboard.Watchlist = append(c.Dashboard.Watchlist, symbol)
	return true
}

// RemoveWatchlistSymbol removes a symbol and reports whether it was present.
func (c *Config) RemoveWatchlistSymbol(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Dashboard.Watchlist))
	for _, s := range c.Dashboard.Watchlist {
		if s != symbol {
			out = append(out, s)
		}
	}
	changed := len(out) != len(c.Dashboard.Watchlist)
	c.Dashboard.Watchlist = out
	return changed
}

// -----------------------------------------------------------------------------

// Save writes the configuration back as YAML, readable by the owner only
// since it holds the login password. An empty path means c.Path.
func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = c.Path
	}

	c.mu.RLock()
	snapshot := *c.MConfig
	snapshot.Dashboard.Watchlist = append([]string(nil), c.Dashboard.Watchlist...)
	c.mu.RUnlock()

	snapshot.Auth.Password = c.filePassword
	snapshot.Port = c.filePort
	snapshot.LogLevel = c.fileLogLevel

	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Tighten an existing file first; WriteFile keeps the old mode
	if err := os.Chmod(configPath, 0600); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to restrict config file '%s': %w", configPath, err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
