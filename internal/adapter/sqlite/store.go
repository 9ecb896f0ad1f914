// Package sqlite keeps the latest exported table in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Store replaces the daily_weather table on every load.
// It implements pipeline.TableLoader.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the database at path and applies the schema.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_weather (
		date TEXT NOT NULL,
		station_id TEXT NOT NULL,
		stadium TEXT NOT NULL,
		tavg REAL,
		tmin REAL,
		tmax REAL,
		prcp REAL,
		snow REAL,
		wdir REAL,
		wspd REAL,
		wpgt REAL,
		pres REAL,
		tsun REAL,
		run_id TEXT NOT NULL,
		exported_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_daily_weather_stadium_date ON daily_weather(stadium, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

const insertRow = `
	INSERT INTO daily_weather (date, station_id, stadium, tavg, tmin, tmax, prcp, snow, wdir, wspd, wpgt, pres, tsun, run_id, exported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// LoadTable deletes the previous run and inserts the new rows in one
// transaction.
func (s *Store) LoadTable(ctx context.Context, table domain.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM daily_weather"); err != nil {
		return fmt.Errorf("clear daily_weather: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRow)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	exportedAt := table.ExportedAt.UTC().Format(time.RFC3339)
	for i := range table.Rows {
		row := table.Rows[i]
		args := []any{row.Date.Format(domain.DateLayout), string(row.StationID), row.Location}
		for _, v := range row.Values() {
			args = append(args, nullFloat(v))
		}
		args = append(args, table.RunID, exportedAt)
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s %s: %w", row.Location, row.Date.Format(domain.DateLayout), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("sqlite table replaced", "rows", len(table.Rows), "run_id", table.RunID)
	return nil
}

// CountRows returns the number of rows stored for a stadium.
func (s *Store) CountRows(ctx context.Context, stadium string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_weather WHERE stadium = ?", stadium).Scan(&n)
	return n, err
}

// RunIDs returns the distinct run ids present in the table.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT run_id FROM daily_weather ORDER BY run_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
