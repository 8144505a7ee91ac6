package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-dashboard/src/logger"
	"stock-dashboard/src/models"
)

// barStore holds the SQL shared by the sqlite and postgres caches. Only the
// placeholder style and table qualification differ between them.
type barStore struct {
	DB          *sql.DB
	Logger      *logger.Logger
	seriesTable string
	barsTable   string
	placeholder func(n int) string
	now         func() time.Time
}

// -----------------------------------------------------------------------------

func (s *barStore) args(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = s.placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

// -----------------------------------------------------------------------------

func (s *barStore) Get(symbol string, tf models.Timeframe, maxAge time.Duration) (models.MSeries, bool, error) {
	cutoff := s.now().Add(-maxAge).UnixNano()

	var fetchedAt int64
	var prevClose sql.NullFloat64
	row := s.DB.QueryRow(fmt.Sprintf(
		`SELECT fetched_at, previous_close FROM %s WHERE symbol = %s AND timeframe = %s AND fetched_at >= %s`,
		s.seriesTable, s.placeholder(1), s.placeholder(2), s.placeholder(3)),
		symbol, string(tf), cutoff)
	if err := row.Scan(&fetchedAt, &prevClose); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MSeries{}, false, nil
		}
		return models.MSeries{}, false, err
	}

	rows, err := s.DB.Query(fmt.Sprintf(
		`SELECT timestamp, open, high, low, close, volume FROM %s WHERE symbol = %s AND timeframe = %s ORDER BY timestamp`,
		s.barsTable, s.placeholder(1), s.placeholder(2)),
		symbol, string(tf))
	if err != nil {
		return models.MSeries{}, false, err
	}
	defer rows.Close()

	series := models.MSeries{
		Symbol:    symbol,
		Timeframe: tf,
		FetchedAt: time.Unix(0, fetchedAt).UTC(),
	}
	if prevClose.Valid {
		series.PreviousClose = models.Some(prevClose.Float64)
	}
	for rows.Next() {
		var b models.MBar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return models.MSeries{}, false, err
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return models.MSeries{}, false, err
	}
	return series, len(series.Bars) > 0, nil
}

// -----------------------------------------------------------------------------

// Put replaces the series in one transaction, inserting bars in batches that
// stay under the driver's bound-parameter limit.
func (s *barStore) Put(series models.MSeries) error {
	if series.IsEmpty() {
		return nil
	}
	fetchedAt := series.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tf := string(series.Timeframe)
	for _, table := range []string{s.seriesTable, s.barsTable} {
		q := fmt.Sprintf(`DELETE FROM %s WHERE symbol = %s AND timeframe = %s`, table, s.placeholder(1), s.placeholder(2))
		if _, err := tx.Exec(q, series.Symbol, tf); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	var prev interface{}
	if v, ok := series.PreviousClose.Get(); ok {
		prev = v
	}
	q := fmt.Sprintf(`INSERT INTO %s (symbol, timeframe, fetched_at, previous_close) VALUES (%s)`, s.seriesTable, s.args(1, 4))
	if _, err := tx.Exec(q, series.Symbol, tf, fetchedAt.UnixNano(), prev); err != nil {
		return fmt.Errorf("failed to insert series header: %w", err)
	}

	for start := 0; start < len(series.Bars); start += batchSize {
		end := min(start+batchSize, len(series.Bars))
		chunk := series.Bars[start:end]

		values := make([]string, len(chunk))
		params := make([]interface{}, 0, len(chunk)*paramsPerRow)
		for i, b := range chunk {
			values[i] = "(" + s.args(i*paramsPerRow+1, paramsPerRow) + ")"
			params = append(params, series.Symbol, tf, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		q := fmt.Sprintf(`INSERT INTO %s (symbol, timeframe, timestamp, open, high, low, close, volume) VALUES %s`,
			s.barsTable, strings.Join(values, ", "))
		if _, err := tx.Exec(q, params...); err != nil {
			return fmt.Errorf("failed to insert bars: %w", err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (s *barStore) Purge(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).UnixNano()

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`DELETE FROM %s WHERE EXISTS (SELECT 1 FROM %s h WHERE h.symbol = %s.symbol AND h.timeframe = %s.timeframe AND h.fetched_at < %s)`,
		s.barsTable, s.seriesTable, s.barsTable, s.barsTable, s.placeholder(1))
	if _, err := tx.Exec(q, cutoff); err != nil {
		return fmt.Errorf("failed to purge bars: %w", err)
	}
	res, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE fetched_at < %s`, s.seriesTable, s.placeholder(1)), cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge series: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.Logger.Info("Purged %d cached series older than %s", n, olderThan)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *barStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
