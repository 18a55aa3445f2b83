// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps converted readings in a SQLite database so that
// several CSV exports can be queried together. Each CSV is one source;
// re-ingesting a source replaces its rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bikecount/internal/convert"
	"github.com/pdiddy/bikecount/pkg/types"
)

// Store manages the readings database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Database and ensures the schema
// exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("store database path is empty")
	}
	if dir := filepath.Dir(cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Database+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source TEXT PRIMARY KEY,
			file_mod_time TEXT NOT NULL,
			row_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS readings (
			source TEXT NOT NULL REFERENCES ingest_status(source) ON DELETE CASCADE,
			row_num INTEGER NOT NULL,
			colonnina TEXT,
			totale TEXT,
			direzione_periferia TEXT,
			direzione_centro TEXT,
			geo_point_2d TEXT,
			data TEXT,
			PRIMARY KEY (source, row_num)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_colonnina ON readings(colonnina)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_data ON readings(data)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestResult describes one ingested CSV.
type IngestResult struct {
	Source  string
	Rows    int
	Skipped bool
	Updated bool
}

// Ingest loads the CSV at path into the database. The source key is the
// absolute path. A file whose modification time matches the last ingest is
// skipped; a changed file replaces its previous rows.
func (s *Store) Ingest(ctx context.Context, path string, w io.Writer) (IngestResult, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	res := IngestResult{Source: source}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	var storedRows int
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time, row_count FROM ingest_status WHERE source = ?`, source,
	).Scan(&storedModTime, &storedRows)
	switch {
	case err == nil && storedModTime == modTime:
		fmt.Fprintf(w, "skipped %s (unchanged)\n", path)
		res.Skipped = true
		res.Rows = storedRows
		return res, nil
	case err == nil:
		res.Updated = true
	case err != sql.ErrNoRows:
		return res, fmt.Errorf("checking ingest status: %w", err)
	}

	readings, err := convert.ReadCSV(path)
	if err != nil {
		return res, err
	}

	if err := s.replace(ctx, source, modTime, readings); err != nil {
		return res, fmt.Errorf("ingesting %s: %w", path, err)
	}
	res.Rows = len(readings)

	verb := "ingested"
	if res.Updated {
		verb = "updated"
	}
	fmt.Fprintf(w, "%s %s (%d readings)\n", verb, path, res.Rows)
	return res, nil
}

func (s *Store) replace(ctx context.Context, source, modTime string, readings []types.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE source = ?`, source); err != nil {
		return fmt.Errorf("deleting old readings: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (source, file_mod_time, row_count) VALUES (?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET file_mod_time=excluded.file_mod_time, row_count=excluded.row_count`,
		source, modTime, len(readings),
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (source, row_num, colonnina, totale, direzione_periferia, direzione_centro, geo_point_2d, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range readings {
		if _, err := stmt.ExecContext(ctx,
			source, i+1, r.Station, r.Total, r.Outbound, r.Inbound, r.GeoPoint, r.Date,
		); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of readings stored for source, or across all
// sources when source is empty.
func (s *Store) Count(ctx context.Context, source string) (int, error) {
	query := `SELECT count(*) FROM readings`
	var args []any
	if source != "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			return 0, fmt.Errorf("resolving %s: %w", source, err)
		}
		query += ` WHERE source = ?`
		args = append(args, abs)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return n, nil
}

// StationSummary aggregates the readings of one counter.
type StationSummary struct {
	Station  string `json:"colonnina" yaml:"colonnina"`
	Readings int    `json:"readings" yaml:"readings"`
	Total    int64  `json:"totale" yaml:"totale"`
	First    string `json:"first" yaml:"first"`
	Last     string `json:"last" yaml:"last"`
}

// Stations summarises every counter across all sources, ordered by name.
// Non-numeric totals count as zero.
func (s *Store) Stations(ctx context.Context) ([]StationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT colonnina, count(*), COALESCE(sum(CAST(totale AS INTEGER)), 0),
		        COALESCE(min(NULLIF(data, '')), ''), COALESCE(max(NULLIF(data, '')), '')
		 FROM readings
		 GROUP BY colonnina
		 ORDER BY colonnina`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var out []StationSummary
	for rows.Next() {
		var st StationSummary
		if err := rows.Scan(&st.Station, &st.Readings, &st.Total, &st.First, &st.Last); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Readings returns the stored readings in source then row order. It feeds
// the trend report when the database is used as input.
func (s *Store) Readings(ctx context.Context) ([]types.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT colonnina, totale, direzione_periferia, direzione_centro, geo_point_2d, data
		 FROM readings ORDER BY source, row_num`)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var out []types.Reading
	for rows.Next() {
		var r types.Reading
		if err := rows.Scan(&r.Station, &r.Total, &r.Outbound, &r.Inbound, &r.GeoPoint, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
