// models/flight.go
package models

import "time"

// Kind selects which movement endpoint a fetch unit targets: flights
// departing from an airport, or flights whose estimated destination is
// that airport.
type Kind string

const (
	KindDeparture   Kind = "departure"
	KindDestination Kind = "destination"
)

// Valid reports whether k is one of the two supported movement kinds.
func (k Kind) Valid() bool {
	return k == KindDeparture || k == KindDestination
}

// FlightPayload is one element of the JSON array returned by the
// OpenSky movements endpoints. Only icao24 and firstSeen are guaranteed
// by the API; everything else may be null.
type FlightPayload struct {
	Icao24                           string  `json:"icao24"`
	FirstSeen                        *int64  `json:"firstSeen"`
	EstDepartureAirport              *string `json:"estDepartureAirport"`
	LastSeen                         *int64  `json:"lastSeen"`
	EstArrivalAirport                *string `json:"estArrivalAirport"`
	Callsign                         *string `json:"callsign"`
	EstDepartureAirportHorizDistance *int64  `json:"estDepartureAirportHorizDistance"`
	EstDepartureAirportVertDistance  *int64  `json:"estDepartureAirportVertDistance"`
	EstArrivalAirportHorizDistance   *int64  `json:"estArrivalAirportHorizDistance"`
	EstArrivalAirportVertDistance    *int64  `json:"estArrivalAirportVertDistance"`
	DepartureAirportCandidatesCount  *int64  `json:"departureAirportCandidatesCount"`
	ArrivalAirportCandidatesCount    *int64  `json:"arrivalAirportCandidatesCount"`
}

// HasRequiredFields reports whether the payload carries the two fields
// that form part of the flights primary key. Payloads without them are
// dropped before persistence.
func (p FlightPayload) HasRequiredFields() bool {
	return p.Icao24 != "" && p.FirstSeen != nil
}

// FlightRecord is a persisted flight row. Pointer fields are nullable
// columns; they serialize as empty CSV cells and optional Parquet
// columns.
type FlightRecord struct {
	Airport                          string  `db:"airport" csv:"airport" parquet:"airport"`
	Date                             string  `db:"date" csv:"date" parquet:"date"`
	Kind                             string  `db:"kind" csv:"kind" parquet:"kind"`
	Icao24                           string  `db:"icao24" csv:"icao24" parquet:"icao24"`
	FirstSeen                        int64   `db:"first_seen" csv:"first_seen" parquet:"first_seen"`
	LastSeen                         *int64  `db:"last_seen" csv:"last_seen" parquet:"last_seen,optional"`
	EstDepartureAirport              *string `db:"est_departure_airport" csv:"est_departure_airport" parquet:"est_departure_airport,optional"`
	EstArrivalAirport                *string `db:"est_arrival_airport" csv:"est_arrival_airport" parquet:"est_arrival_airport,optional"`
	Callsign                         *string `db:"callsign" csv:"callsign" parquet:"callsign,optional"`
	EstDepartureAirportHorizDistance *int64  `db:"est_departure_airport_horiz_distance" csv:"est_departure_airport_horiz_distance" parquet:"est_departure_airport_horiz_distance,optional"`
	EstDepartureAirportVertDistance  *int64  `db:"est_departure_airport_vert_distance" csv:"est_departure_airport_vert_distance" parquet:"est_departure_airport_vert_distance,optional"`
	EstArrivalAirportHorizDistance   *int64  `db:"est_arrival_airport_horiz_distance" csv:"est_arrival_airport_horiz_distance" parquet:"est_arrival_airport_horiz_distance,optional"`
	EstArrivalAirportVertDistance    *int64  `db:"est_arrival_airport_vert_distance" csv:"est_arrival_airport_vert_distance" parquet:"est_arrival_airport_vert_distance,optional"`
	DepartureAirportCandidatesCount  *int64  `db:"departure_airport_candidates_count" csv:"departure_airport_candidates_count" parquet:"departure_airport_candidates_count,optional"`
	ArrivalAirportCandidatesCount    *int64  `db:"arrival_airport_candidates_count" csv:"arrival_airport_candidates_count" parquet:"arrival_airport_candidates_count,optional"`
}

// FetchUnit identifies one API call and one storage slot: a single
// airport on a single calendar day for one movement kind.
type FetchUnit struct {
	Airport string
	Date    time.Time // midnight UTC of the calendar day
	Kind    Kind
}

// DateString returns the unit's calendar day in YYYY-MM-DD form, the
// representation used for storage keys.
func (u FetchUnit) DateString() string {
	return u.Date.UTC().Format("2006-01-02")
}

// Summary aggregates the outcome of one orchestrator run.
type Summary struct {
	Total   int
	Skipped int
	Fetched int
	Failed  int
}
