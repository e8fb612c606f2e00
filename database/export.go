// database/export.go
package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/parquet-go/parquet-go"

	"openskyfetch/models"
)

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatParquet ExportFormat = "parquet"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or parquet)", s)
	}
}

// ExportFilters restrict which flight rows are exported. All supplied
// filters AND together; an absent filter imposes no restriction.
type ExportFilters struct {
	DepartureAirports []string
	ArrivalAirports   []string
	StartDate         *time.Time
	EndDate           *time.Time
}

func buildExportQuery(f ExportFilters) (string, []interface{}) {
	query := `SELECT airport, date, kind, icao24, first_seen, last_seen,
		est_departure_airport, est_arrival_airport, callsign,
		est_departure_airport_horiz_distance,
		est_departure_airport_vert_distance,
		est_arrival_airport_horiz_distance,
		est_arrival_airport_vert_distance,
		departure_airport_candidates_count,
		arrival_airport_candidates_count
	FROM flights`

	var conditions []string
	var args []interface{}

	if len(f.DepartureAirports) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.DepartureAirports)), ",")
		conditions = append(conditions, "airport IN ("+placeholders+")")
		for _, a := range f.DepartureAirports {
			args = append(args, a)
		}
	}
	if len(f.ArrivalAirports) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.ArrivalAirports)), ",")
		conditions = append(conditions, "est_arrival_airport IN ("+placeholders+")")
		for _, a := range f.ArrivalAirports {
			args = append(args, a)
		}
	}
	if f.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, f.StartDate.UTC().Format(dateLayout))
	}
	if f.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, f.EndDate.UTC().Format(dateLayout))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, airport, first_seen"

	return query, args
}

// Export writes the filtered flight rows, ordered by (date, airport,
// first_seen), to outputPath in the given format and returns the row
// count. Zero matched rows still produce a valid file.
func (s *Store) Export(ctx context.Context, outputPath string, format ExportFormat, f ExportFilters) (int, error) {
	query, args := buildExportQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query flights for export: %w", err)
	}
	defer rows.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file %s: %w", outputPath, err)
	}
	defer out.Close()

	var count int
	switch format {
	case FormatParquet:
		count, err = writeParquet(out, rows)
	default:
		count, err = writeCSV(out, rows)
	}
	if err != nil {
		return count, err
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("failed to iterate flight rows: %w", err)
	}
	if err := out.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize export file %s: %w", outputPath, err)
	}
	return count, nil
}

func scanFlightRecord(rows *sql.Rows) (models.FlightRecord, error) {
	var rec models.FlightRecord
	err := rows.Scan(
		&rec.Airport, &rec.Date, &rec.Kind, &rec.Icao24, &rec.FirstSeen, &rec.LastSeen,
		&rec.EstDepartureAirport, &rec.EstArrivalAirport, &rec.Callsign,
		&rec.EstDepartureAirportHorizDistance,
		&rec.EstDepartureAirportVertDistance,
		&rec.EstArrivalAirportHorizDistance,
		&rec.EstArrivalAirportVertDistance,
		&rec.DepartureAirportCandidatesCount,
		&rec.ArrivalAirportCandidatesCount,
	)
	return rec, err
}

func writeCSV(out *os.File, rows *sql.Rows) (int, error) {
	w := csv.NewWriter(out)
	enc := csvutil.NewEncoder(w)

	count := 0
	for rows.Next() {
		rec, err := scanFlightRecord(rows)
		if err != nil {
			return count, fmt.Errorf("failed to scan flight row: %w", err)
		}
		if err := enc.Encode(rec); err != nil {
			return count, fmt.Errorf("failed to encode CSV row: %w", err)
		}
		count++
	}
	if count == 0 {
		// Still emit the header so an empty export is a valid CSV.
		if err := enc.EncodeHeader(models.FlightRecord{}); err != nil {
			return 0, fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return count, nil
}

func writeParquet(out *os.File, rows *sql.Rows) (int, error) {
	w := parquet.NewGenericWriter[models.FlightRecord](out)

	count := 0
	buf := make([]models.FlightRecord, 1)
	for rows.Next() {
		rec, err := scanFlightRecord(rows)
		if err != nil {
			return count, fmt.Errorf("failed to scan flight row: %w", err)
		}
		buf[0] = rec
		if _, err := w.Write(buf); err != nil {
			return count, fmt.Errorf("failed to write Parquet row: %w", err)
		}
		count++
	}

	if err := w.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize Parquet output: %w", err)
	}
	return count, nil
}
