package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"daily_report/internal/metrics"
	"daily_report/internal/models"
	"daily_report/internal/repository"
)

const minutesPerDay = 24 * 60

// Totals are the derived figures stored on a DailyReport.
type Totals struct {
	Distance     float64 `json:"total_distance"`
	WorkingHours float64 `json:"total_working_hours"`
}

// ComputeTotals sums entry distances and the minutes between each entry's
// start and end time. An end before the start is taken to cross midnight.
// Entries with a missing or malformed time contribute no minutes. Hours are
// rounded to one decimal.
func ComputeTotals(entries []models.TripEntry) Totals {
	var distance float64
	var minutes int
	for _, e := range entries {
		if e.Distance != nil {
			distance += *e.Distance
		}
		if e.StartTime == nil || e.EndTime == nil {
			continue
		}
		start, ok := parseClock(*e.StartTime)
		if !ok {
			continue
		}
		end, ok := parseClock(*e.EndTime)
		if !ok {
			continue
		}
		diff := end - start
		if diff < 0 {
			diff += minutesPerDay
		}
		minutes += diff
	}
	return Totals{
		Distance:     distance,
		WorkingHours: math.Round(float64(minutes)/60*10) / 10,
	}
}

// parseClock reads "HH:MM" as minutes since midnight.
func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// recalcTotals recomputes a report's totals from its current entries and
// persists them. Callers run it inside the transaction that changed the
// entries.
func recalcTotals(ctx context.Context, store repository.Store, reportID string) (Totals, error) {
	entries, err := store.ListTripEntries(ctx, reportID)
	if err != nil {
		return Totals{}, err
	}
	t := ComputeTotals(entries)
	if err := store.UpdateReportTotals(ctx, reportID, t.Distance, t.WorkingHours); err != nil {
		return Totals{}, notFound(err, "report")
	}
	metrics.TotalsRecalculations.Inc()
	return t, nil
}
