package stats

import (
	"sort"

	"example.com/workout/internal/domain"
)

// MonthGroup holds the records of one calendar month, labeled "January 2006".
type MonthGroup struct {
	Label   string           `json:"label"`
	Records []domain.Workout `json:"records"`
}

// GroupByMonth buckets records by calendar month. Group order follows the
// first occurrence of each month in the input, and records keep their input
// order within a group; callers wanting chronological groups sort the input
// descending by date beforehand. Records without a date are dropped.
func GroupByMonth(records []domain.Workout) []MonthGroup {
	groups := make([]MonthGroup, 0)
	index := make(map[string]int)
	for _, w := range records {
		if w.Date.IsZero() {
			continue
		}
		label := w.Date.UTC().Format("January 2006")
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, MonthGroup{Label: label})
		}
		groups[i].Records = append(groups[i].Records, w)
	}
	return groups
}

// CategoryCount counts workouts per category, in first-occurrence order.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryTotals tallies the category breakdown for charting.
func CategoryTotals(records []domain.Workout) []CategoryCount {
	totals := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, w := range records {
		i, ok := index[w.Category]
		if !ok {
			i = len(totals)
			index[w.Category] = i
			totals = append(totals, CategoryCount{Category: w.Category})
		}
		totals[i].Count++
	}
	return totals
}

// Recent returns the n most recent records, newest first. Records without a
// date sort last. The input slice is left untouched.
func Recent(records []domain.Workout, n int) []domain.Workout {
	out := make([]domain.Workout, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
