// database/connection.go
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store owns the local SQLite database holding raw API responses,
// parsed flight rows, and run bookkeeping.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path and
// bootstraps the schema. WAL and a busy timeout let concurrent fetch
// units commit their own transactions without tripping over each other.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_responses (
			airport           TEXT NOT NULL,
			date              TEXT NOT NULL,
			kind              TEXT NOT NULL,
			request_timestamp TEXT NOT NULL DEFAULT (datetime('now')),
			raw_json          TEXT NOT NULL,
			PRIMARY KEY (airport, date, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS flights (
			airport                              TEXT NOT NULL,
			date                                 TEXT NOT NULL,
			kind                                 TEXT NOT NULL,
			icao24                               TEXT NOT NULL,
			first_seen                           INTEGER NOT NULL,
			last_seen                            INTEGER,
			est_departure_airport                TEXT,
			est_arrival_airport                  TEXT,
			callsign                             TEXT,
			est_departure_airport_horiz_distance INTEGER,
			est_departure_airport_vert_distance  INTEGER,
			est_arrival_airport_horiz_distance   INTEGER,
			est_arrival_airport_vert_distance    INTEGER,
			departure_airport_candidates_count   INTEGER,
			arrival_airport_candidates_count     INTEGER,
			PRIMARY KEY (airport, date, kind, icao24, first_seen)
		)`,
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			kind        TEXT NOT NULL,
			airports    TEXT NOT NULL,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			total       INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			fetched     INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_airport_date ON flights(airport, date)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_icao24 ON flights(icao24)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_callsign ON flights(callsign)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_departure_airport ON flights(est_departure_airport)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
