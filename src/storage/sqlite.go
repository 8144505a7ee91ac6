package storage

import (
	"database/sql"
	"fmt"
	"time"

	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// SQLite batch constants
const (
	sqliteMaxVars = 32000
	paramsPerRow  = 8
	batchSize     = sqliteMaxVars / paramsPerRow // 4000 rows
)

// DefaultSQLiteDSN keeps the cache in process memory.
const DefaultSQLiteDSN = "file::memory:?cache=shared"

// -----------------------------------------------------------------------------

type SQLiteCache struct {
	barStore
	Config *models.MConfig
}

// -----------------------------------------------------------------------------

func NewSQLiteCache(cfg *models.MConfig, log *logger.Logger) *SQLiteCache {
	return &SQLiteCache{
		Config: cfg,
		barStore: barStore{
			Logger:      log,
			seriesTable: "series_cache",
			barsTable:   "bar_cache",
			placeholder: func(int) string { return "?" },
			now:         time.Now,
		},
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteCache) Type() string { return "sqlite" }

// -----------------------------------------------------------------------------

func (d *SQLiteCache) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// Recreate Tables
	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCache) recreateTables() error {
	for _, table := range []string{d.barsTable, d.seriesTable} {
		if _, err := d.DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}

	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := fmt.Sprintf(`
		CREATE TABLE %s (
			symbol TEXT,
			timeframe TEXT,
			fetched_at INTEGER,
			previous_close REAL,
			PRIMARY KEY (symbol, timeframe)
		);
	`, d.seriesTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.seriesTable, err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE %s (
			symbol TEXT,
			timeframe TEXT,
			timestamp INTEGER,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume REAL,
			PRIMARY KEY (symbol, timeframe, timestamp)
		);
	`, d.barsTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.barsTable, err)
	}

	d.Logger.Info("SQLite bar cache ready")
	return nil
}
