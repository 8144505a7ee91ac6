package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"

	_ "github.com/lib/pq"
)

// DefaultPostgresSchema is used when storage.schema is empty.
const DefaultPostgresSchema = "stock_dashboard"

// -----------------------------------------------------------------------------

type PostgresCache struct {
	barStore
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresCache(cfg *models.MConfig, log *logger.Logger) *PostgresCache {
	schema := cfg.Storage.Schema
	if schema == "" {
		schema = DefaultPostgresSchema
	}
	return &PostgresCache{
		Config: cfg,
		Schema: schema,
		barStore: barStore{
			Logger:      log,
			seriesTable: fmt.Sprintf(`"%s"."series_cache"`, schema),
			barsTable:   fmt.Sprintf(`"%s"."bar_cache"`, schema),
			placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
			now:         time.Now,
		},
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresCache) Type() string { return "postgres" }

// -----------------------------------------------------------------------------

func (d *PostgresCache) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresCache) recreateTables() error {
	for _, table := range []string{d.barsTable, d.seriesTable} {
		if _, err := d.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}

	query := fmt.Sprintf(`
		CREATE TABLE %s (
			symbol TEXT,
			timeframe TEXT,
			fetched_at BIGINT,
			previous_close DOUBLE PRECISION,
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
			timestamp BIGINT,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			PRIMARY KEY (symbol, timeframe, timestamp)
		);
	`, d.barsTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.barsTable, err)
	}

	d.Logger.Info("Postgres bar cache ready in schema %s", d.Schema)
	return nil
}
