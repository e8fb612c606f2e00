// fetcher/events.go
package fetcher

import (
	"github.com/rs/zerolog"

	"openskyfetch/models"
)

// Observer receives progress events from a run. Implementations render
// them (logs, progress bars); the orchestrator only emits.
type Observer interface {
	UnitStarted(u models.FetchUnit)
	UnitSucceeded(u models.FetchUnit, flights, dropped int)
	UnitFailed(u models.FetchUnit, err error)
	RunCompleted(s models.Summary)
}

// LogObserver renders run events as structured log lines.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver wraps log as the run's event sink.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "fetcher").Logger()}
}

func (o *LogObserver) UnitStarted(u models.FetchUnit) {
	o.log.Debug().Str("airport", u.Airport).Str("date", u.DateString()).
		Str("kind", string(u.Kind)).Msg("starting fetch")
}

func (o *LogObserver) UnitSucceeded(u models.FetchUnit, flights, dropped int) {
	evt := o.log.Info().Str("airport", u.Airport).Str("date", u.DateString()).
		Str("kind", string(u.Kind)).Int("flights", flights)
	if dropped > 0 {
		evt = evt.Int("dropped", dropped)
	}
	evt.Msg("fetched")
}

func (o *LogObserver) UnitFailed(u models.FetchUnit, err error) {
	o.log.Error().Str("airport", u.Airport).Str("date", u.DateString()).
		Str("kind", string(u.Kind)).Err(err).Msg("fetch failed")
}

func (o *LogObserver) RunCompleted(s models.Summary) {
	o.log.Info().Int("total", s.Total).Int("skipped", s.Skipped).
		Int("fetched", s.Fetched).Int("failed", s.Failed).Msg("run complete")
}

type nopObserver struct{}

func (nopObserver) UnitStarted(models.FetchUnit)             {}
func (nopObserver) UnitSucceeded(models.FetchUnit, int, int) {}
func (nopObserver) UnitFailed(models.FetchUnit, error)       {}
func (nopObserver) RunCompleted(models.Summary)              {}
