// database/flight_store_test.go
package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openskyfetch/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "flights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func int64p(v int64) *int64 { return &v }
func strp(s string) *string { return &s }

var testDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func commitUnit(t *testing.T, s *Store, airport string, day time.Time, kind models.Kind, raw string, flights []models.FlightPayload) (int, int) {
	t.Helper()
	ctx := context.Background()
	utx, err := s.BeginUnit(ctx, airport, day, kind)
	require.NoError(t, err)
	defer utx.Rollback()

	require.NoError(t, utx.PutRaw(ctx, []byte(raw)))
	inserted, dropped, err := utx.PutFlights(ctx, flights)
	require.NoError(t, err)
	require.NoError(t, utx.Commit())
	return inserted, dropped
}

func TestExistsFlipsOnCommittedRawResponse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	assert.False(t, exists)

	// Raw response alone is enough; parsed flights are not required.
	utx, err := store.BeginUnit(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	require.NoError(t, utx.PutRaw(ctx, []byte(`[]`)))
	require.NoError(t, utx.Commit())

	exists, err = store.Exists(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	assert.True(t, exists)

	// Other kinds and days keep their own slots.
	exists, err = store.Exists(ctx, "KMCO", testDay, models.KindDestination)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, "KMCO", testDay.AddDate(0, 0, 1), models.KindDeparture)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUncommittedUnitIsInvisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	utx, err := store.BeginUnit(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	require.NoError(t, utx.PutRaw(ctx, []byte(`[]`)))

	exists, err := store.Exists(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	assert.False(t, exists, "uncommitted raw response must not be visible")

	require.NoError(t, utx.Rollback())

	exists, err = store.Exists(ctx, "KMCO", testDay, models.KindDeparture)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPutRawReplacesPriorPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	commitUnit(t, store, "KMCO", testDay, models.KindDeparture, `[{"old":true}]`, nil)
	commitUnit(t, store, "KMCO", testDay, models.KindDeparture, `[{"new":true}]`, nil)

	var count int
	var raw string
	err := store.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(raw_json) FROM raw_responses WHERE airport = ? AND date = ? AND kind = ?`,
		"KMCO", "2024-01-01", "departure",
	).Scan(&count, &raw)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert must leave exactly one raw row per key")
	assert.JSONEq(t, `[{"new":true}]`, raw)
}

func TestPutFlightsReplacesPriorBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []models.FlightPayload{
		{Icao24: "aaa111", FirstSeen: int64p(1704100000)},
		{Icao24: "bbb222", FirstSeen: int64p(1704101000)},
	}
	inserted, dropped := commitUnit(t, store, "KMCO", testDay, models.KindDeparture, `[]`, first)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, dropped)

	second := []models.FlightPayload{
		{Icao24: "ccc333", FirstSeen: int64p(1704102000)},
	}
	inserted, dropped = commitUnit(t, store, "KMCO", testDay, models.KindDeparture, `[]`, second)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 0, dropped)

	var count int
	var icao string
	err := store.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(icao24) FROM flights WHERE airport = ? AND date = ? AND kind = ?`,
		"KMCO", "2024-01-01", "departure",
	).Scan(&count, &icao)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "refetch must fully replace the prior batch")
	assert.Equal(t, "ccc333", icao)
}

func TestPutFlightsDropsPayloadsMissingRequiredFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	flights := []models.FlightPayload{
		{Icao24: "aaa111", FirstSeen: int64p(1704100000), Callsign: strp("AAL100")},
		{Icao24: "", FirstSeen: int64p(1704101000)}, // missing icao24
		{Icao24: "bbb222"}, // missing firstSeen
		{Icao24: "ccc333", FirstSeen: int64p(1704103000)},
	}
	inserted, dropped := commitUnit(t, store, "KMCO", testDay, models.KindDeparture, `[]`, flights)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, dropped)

	var count int
	err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	err = store.RecordRun(ctx, RunRecord{
		Kind:       models.KindDeparture,
		Airports:   []string{"KMCO", "KJFK"},
		StartDate:  testDay,
		EndDate:    testDay.AddDate(0, 0, 1),
		Summary:    models.Summary{Total: 4, Skipped: 1, Fetched: 2, Failed: 1},
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	})
	require.NoError(t, err)

	n, err = store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
