// database/flight_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"openskyfetch/models"
)

const dateLayout = "2006-01-02"

// Exists reports whether a raw response has already been committed for
// the given airport, calendar day, and kind. Skip-existing mode keys
// off this, so it must only see committed units.
func (s *Store) Exists(ctx context.Context, airport string, day time.Time, kind models.Kind) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM raw_responses WHERE airport = ? AND date = ? AND kind = ?`,
		airport, day.UTC().Format(dateLayout), string(kind),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existing data for %s %s: %w",
			airport, day.UTC().Format(dateLayout), err)
	}
	return count > 0, nil
}

// UnitTx is the transaction covering one fetch unit's writes. The
// sequence is PutRaw, PutFlights, Commit; nothing becomes visible to
// Exists until Commit returns.
type UnitTx struct {
	tx      *sql.Tx
	airport string
	date    string
	kind    string
}

// BeginUnit opens the transaction for one (airport, day, kind) slot.
func (s *Store) BeginUnit(ctx context.Context, airport string, day time.Time, kind models.Kind) (*UnitTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit transaction: %w", err)
	}
	return &UnitTx{
		tx:      tx,
		airport: airport,
		date:    day.UTC().Format(dateLayout),
		kind:    string(kind),
	}, nil
}

// PutRaw upserts the raw API payload for the unit's key. A refetch
// fully replaces the previous payload.
func (u *UnitTx) PutRaw(ctx context.Context, rawJSON []byte) error {
	_, err := u.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO raw_responses (airport, date, kind, raw_json)
		 VALUES (?, ?, ?, ?)`,
		u.airport, u.date, u.kind, string(rawJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save raw response for %s %s: %w", u.airport, u.date, err)
	}
	return nil
}

// PutFlights replaces the unit's flight rows with the given batch:
// existing rows for the key are deleted in full, then the new batch is
// inserted. Payloads missing icao24 or firstSeen are dropped, counted,
// never an error. Returns (inserted, dropped).
func (u *UnitTx) PutFlights(ctx context.Context, flights []models.FlightPayload) (int, int, error) {
	_, err := u.tx.ExecContext(ctx,
		`DELETE FROM flights WHERE airport = ? AND date = ? AND kind = ?`,
		u.airport, u.date, u.kind,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete old flights for %s %s: %w", u.airport, u.date, err)
	}

	stmt, err := u.tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO flights (
			airport, date, kind, icao24, first_seen, last_seen,
			est_departure_airport, est_arrival_airport, callsign,
			est_departure_airport_horiz_distance,
			est_departure_airport_vert_distance,
			est_arrival_airport_horiz_distance,
			est_arrival_airport_vert_distance,
			departure_airport_candidates_count,
			arrival_airport_candidates_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare flight insert: %w", err)
	}
	defer stmt.Close()

	inserted, dropped := 0, 0
	for _, f := range flights {
		if !f.HasRequiredFields() {
			dropped++
			continue
		}
		_, err := stmt.ExecContext(ctx,
			u.airport, u.date, u.kind, f.Icao24, *f.FirstSeen, f.LastSeen,
			f.EstDepartureAirport, f.EstArrivalAirport, f.Callsign,
			f.EstDepartureAirportHorizDistance,
			f.EstDepartureAirportVertDistance,
			f.EstArrivalAirportHorizDistance,
			f.EstArrivalAirportVertDistance,
			f.DepartureAirportCandidatesCount,
			f.ArrivalAirportCandidatesCount,
		)
		if err != nil {
			return inserted, dropped, fmt.Errorf("failed to insert flight %s for %s %s: %w",
				f.Icao24, u.airport, u.date, err)
		}
		inserted++
	}
	return inserted, dropped, nil
}

// Commit makes the unit's writes durable and visible to Exists.
func (u *UnitTx) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unit %s %s: %w", u.airport, u.date, err)
	}
	return nil
}

// Rollback abandons the unit's writes. Safe to call after Commit.
func (u *UnitTx) Rollback() error {
	err := u.tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}
