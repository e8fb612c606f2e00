// fetcher/orchestrator.go
package fetcher

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"openskyfetch/client"
	"openskyfetch/database"
	"openskyfetch/models"
)

// Params describes one run: the airports × date-range cross-product to
// fetch. StartOverride/EndOverride carry the explicit times of day when
// the range bounds were given as datetimes rather than bare dates; they
// narrow the first and last day's request windows.
type Params struct {
	Airports      []string
	StartDate     time.Time // midnight UTC
	EndDate       time.Time // midnight UTC
	StartOverride *time.Time
	EndOverride   *time.Time
	Kind          models.Kind
	SkipExisting  bool
}

// Runner executes fetch runs against one API client and one store.
type Runner struct {
	API   *client.Client
	Store *database.Store
	Obs   Observer
}

// DatesBetween expands an inclusive range of calendar days.
func DatesBetween(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// windowFor builds the unit's request window: the full UTC day, with
// the range's explicit start/end instants spliced onto the first and
// last day. On a single-day range with both overrides this yields
// [startOverride, endOverride] directly, so the end override always
// governs the end bound.
func windowFor(p Params, day time.Time) client.Window {
	w := client.DayWindow(day)
	if p.StartOverride != nil && day.Equal(p.StartDate) {
		w.Begin = p.StartOverride.Unix()
	}
	if p.EndOverride != nil && day.Equal(p.EndDate) {
		w.End = p.EndOverride.Unix()
	}
	return w
}

type unitResult struct {
	flights int
	dropped int
	err     error
}

// Run expands the cross-product into fetch units, drops the ones
// already stored when SkipExisting is set, executes the rest
// concurrently under the client's rate gate, and commits each unit
// independently. Unit failures are counted, never fatal; an auth
// failure before any unit runs is.
func (r *Runner) Run(ctx context.Context, p Params) (models.Summary, error) {
	obs := r.Obs
	if obs == nil {
		obs = nopObserver{}
	}

	startedAt := time.Now()
	dates := DatesBetween(p.StartDate, p.EndDate)

	var summary models.Summary
	summary.Total = len(p.Airports) * len(dates)

	var units []models.FetchUnit
	for _, airport := range p.Airports {
		for _, day := range dates {
			if p.SkipExisting {
				exists, err := r.Store.Exists(ctx, airport, day, p.Kind)
				if err != nil {
					return summary, err
				}
				if exists {
					summary.Skipped++
					continue
				}
			}
			units = append(units, models.FetchUnit{Airport: airport, Date: day, Kind: p.Kind})
		}
	}

	if len(units) > 0 {
		// Fail fast on bad credentials before scheduling any unit.
		if err := r.API.CheckAuth(ctx); err != nil {
			return summary, err
		}

		results := make([]unitResult, len(units))
		g, gctx := errgroup.WithContext(ctx)
		for i, unit := range units {
			i, unit := i, unit
			g.Go(func() error {
				results[i] = r.fetchUnit(gctx, obs, p, unit)
				return nil // unit failures never abort siblings
			})
		}
		if err := g.Wait(); err != nil {
			return summary, err
		}

		for _, res := range results {
			if res.err != nil {
				summary.Failed++
			} else {
				summary.Fetched++
			}
		}
	}

	obs.RunCompleted(summary)

	if err := r.Store.RecordRun(ctx, database.RunRecord{
		Kind:       p.Kind,
		Airports:   p.Airports,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Summary:    summary,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}); err != nil {
		return summary, err
	}

	return summary, nil
}

// fetchUnit performs one unit end to end: rate-gated fetch, then raw
// payload, parsed rows, and commit inside the unit's own transaction.
func (r *Runner) fetchUnit(ctx context.Context, obs Observer, p Params, unit models.FetchUnit) unitResult {
	obs.UnitStarted(unit)

	window := windowFor(p, unit.Date)
	payloads, raw, err := r.API.FetchMovements(ctx, unit.Kind, unit.Airport, window)
	if err != nil {
		obs.UnitFailed(unit, err)
		return unitResult{err: err}
	}

	utx, err := r.Store.BeginUnit(ctx, unit.Airport, unit.Date, unit.Kind)
	if err != nil {
		obs.UnitFailed(unit, err)
		return unitResult{err: err}
	}
	defer utx.Rollback()

	if err := utx.PutRaw(ctx, raw); err != nil {
		obs.UnitFailed(unit, err)
		return unitResult{err: err}
	}

	inserted, dropped, err := utx.PutFlights(ctx, payloads)
	if err != nil {
		obs.UnitFailed(unit, err)
		return unitResult{err: err}
	}

	if err := utx.Commit(); err != nil {
		obs.UnitFailed(unit, err)
		return unitResult{err: err}
	}

	obs.UnitSucceeded(unit, inserted, dropped)
	return unitResult{flights: inserted, dropped: dropped}
}

// Describe renders the run parameters for logs and run records.
func (p Params) Describe() string {
	return fmt.Sprintf("%s %v %s..%s", p.Kind, p.Airports,
		p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
}
