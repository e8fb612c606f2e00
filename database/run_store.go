// database/run_store.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"openskyfetch/models"
)

// RunRecord is the audit row written after each orchestrator run.
type RunRecord struct {
	Kind       models.Kind
	Airports   []string
	StartDate  time.Time
	EndDate    time.Time
	Summary    models.Summary
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun appends the outcome of one run to fetch_runs.
func (s *Store) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_runs (
			kind, airports, start_date, end_date,
			total, skipped, fetched, failed, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(r.Kind),
		strings.Join(r.Airports, ","),
		r.StartDate.UTC().Format(dateLayout),
		r.EndDate.UTC().Format(dateLayout),
		r.Summary.Total, r.Summary.Skipped, r.Summary.Fetched, r.Summary.Failed,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch run: %w", err)
	}
	return nil
}

// CountRuns returns how many runs have been recorded.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetch_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fetch runs: %w", err)
	}
	return n, nil
}
