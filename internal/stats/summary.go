package stats

import (
	"math"
	"time"

	"example.com/workout/internal/domain"
)

// caloriesPerHour is the flat estimate applied when a record has no explicit
// calorie override. Placeholder configuration, not a physiological truth.
const caloriesPerHour = 400

// Summary aggregates headline dashboard numbers.
type Summary struct {
	TotalWorkouts  int     `json:"total_workouts"`
	TotalHours     float64 `json:"total_hours"`
	ThisWeekCount  int     `json:"this_week_count"`
	CaloriesBurned int     `json:"calories_burned"`
}

// ComputeSummary derives totals from the full record collection. The 7-day
// window is inclusive: every record on or after the start of the day six
// days before now counts toward ThisWeekCount.
func ComputeSummary(records []domain.Workout, now time.Time) Summary {
	weekStart := startOfDay(now.UTC().AddDate(0, 0, -6))

	var totalMinutes int
	var calories float64
	var thisWeek int
	for _, w := range records {
		totalMinutes += effectiveDuration(w)

		if w.Calories > 0 {
			calories += float64(w.Calories)
		} else if w.DurationMin > 0 {
			calories += float64(w.DurationMin) / 60 * caloriesPerHour
		} else {
			calories += caloriesPerHour
		}

		if day, ok := dayKey(w.Date); ok && !day.Before(weekStart) {
			thisWeek++
		}
	}

	return Summary{
		TotalWorkouts:  len(records),
		TotalHours:     math.Round(float64(totalMinutes)/60*10) / 10,
		ThisWeekCount:  thisWeek,
		CaloriesBurned: int(math.Round(calories)),
	}
}
