package stats

import (
	"sort"
	"strings"
	"time"

	"example.com/workout/internal/domain"
)

// HeatmapMetric selects the intensity scale for calendar heatmap buckets.
type HeatmapMetric string

const (
	// MetricFrequency counts matching workouts per day.
	MetricFrequency HeatmapMetric = "frequency"
	// MetricDuration sums workout minutes per day, scaled down by 10.
	MetricDuration HeatmapMetric = "duration"
	// MetricCategory counts workouts of the filtered category per day.
	MetricCategory HeatmapMetric = "category"
)

// CategoryAll is the pass-through category filter.
const CategoryAll = "all"

// HeatmapBucket is one (day, intensity) pair. Days with no matching workouts
// produce no bucket; the renderer fills empty cells.
type HeatmapBucket struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// BucketForHeatmap produces sparse ascending day buckets for all matching
// records dated within [start, end] inclusive. An unknown metric falls back
// to frequency, and an empty category filter passes everything through, so
// the function is defined for all inputs.
func BucketForHeatmap(records []domain.Workout, metric HeatmapMetric, categoryFilter string, start, end time.Time) []HeatmapBucket {
	switch metric {
	case MetricFrequency, MetricDuration, MetricCategory:
	default:
		metric = MetricFrequency
	}

	allCategories := categoryFilter == "" || strings.EqualFold(categoryFilter, CategoryAll)
	rangeStart := startOfDay(start)
	rangeEnd := startOfDay(end)

	counts := make(map[time.Time]int)
	for _, w := range records {
		day, ok := dayKey(w.Date)
		if !ok || day.Before(rangeStart) || day.After(rangeEnd) {
			continue
		}
		if !allCategories && !strings.EqualFold(w.Category, categoryFilter) {
			continue
		}

		switch metric {
		case MetricDuration:
			counts[day] += w.DurationMin
		default:
			// category falls back to plain counting once the filter
			// has been applied; with filter "all" it equals frequency.
			counts[day]++
		}
	}

	buckets := make([]HeatmapBucket, 0, len(counts))
	for day, count := range counts {
		if metric == MetricDuration {
			count /= 10
		}
		buckets = append(buckets, HeatmapBucket{Day: day, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets
}
