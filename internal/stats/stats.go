// Package stats computes derived statistics over a workout history.
//
// Every function is pure: it takes a fully materialized record collection
// (plus an explicit "now" where time matters), mutates nothing, and returns
// the same output for the same input. Records with a zero Date are excluded
// from date-keyed computations but still counted in plain totals.
//
// All calendar arithmetic uses UTC days.
package stats

import (
	"sort"
	"time"

	"example.com/workout/internal/domain"
)

// defaultDurationMin is assumed when a record carries no duration and an
// estimate is needed. Placeholder value carried over from the legacy tracker.
const defaultDurationMin = 60

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayKey returns the UTC calendar day for a record date, and false for
// records without a usable date.
func dayKey(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return startOfDay(t), true
}

// effectiveDuration applies the default-duration policy.
func effectiveDuration(w domain.Workout) int {
	if w.DurationMin > 0 {
		return w.DurationMin
	}
	return defaultDurationMin
}

// distinctDays collapses records to the sorted-ascending set of distinct
// calendar days with at least one workout.
func distinctDays(records []domain.Workout) []time.Time {
	seen := make(map[time.Time]struct{}, len(records))
	for _, w := range records {
		if day, ok := dayKey(w.Date); ok {
			seen[day] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
