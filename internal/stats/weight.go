package stats

import (
	"sort"
	"time"

	"example.com/workout/internal/domain"
)

// WeightPoint is one day's body-weight sample.
type WeightPoint struct {
	Day   time.Time `json:"day"`
	Value float64   `json:"value"`
}

// WeightTrend is the body-weight series plus its net movement.
type WeightTrend struct {
	Points    []WeightPoint `json:"points"`
	Change    float64       `json:"change"`
	Direction string        `json:"direction"`
}

// ComputeWeightTrend reduces measurements to one point per calendar day (the
// latest sample wins) ordered ascending, with the net change from the first
// to the last day. Direction is "up", "down", or "steady".
func ComputeWeightTrend(entries []domain.WeightEntry) WeightTrend {
	latest := make(map[time.Time]domain.WeightEntry)
	for _, e := range entries {
		day, ok := dayKey(e.Day)
		if !ok {
			continue
		}
		if prev, seen := latest[day]; !seen || e.CreatedAt.After(prev.CreatedAt) {
			latest[day] = e
		}
	}
	if len(latest) == 0 {
		return WeightTrend{Points: []WeightPoint{}, Direction: "steady"}
	}

	points := make([]WeightPoint, 0, len(latest))
	for day, entry := range latest {
		points = append(points, WeightPoint{Day: day, Value: entry.Value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })

	change := points[len(points)-1].Value - points[0].Value
	direction := "steady"
	switch {
	case change > 0:
		direction = "up"
	case change < 0:
		direction = "down"
	}
	return WeightTrend{Points: points, Change: change, Direction: direction}
}
