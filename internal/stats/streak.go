package stats

import (
	"time"

	"example.com/workout/internal/domain"
)

// Streak describes runs of consecutive calendar days with at least one workout.
type Streak struct {
	Current int        `json:"current"`
	Longest int        `json:"longest"`
	LastDay *time.Time `json:"last_day,omitempty"`
}

// ComputeStreak collapses the history to distinct UTC calendar days and counts
// consecutive-day runs. Current counts backward from the most recent day and
// stops at the first gap; Longest is the longest run anywhere in the history.
func ComputeStreak(records []domain.Workout) Streak {
	days := distinctDays(records)
	if len(days) == 0 {
		return Streak{}
	}

	longest, running := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}

	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		current++
	}

	last := days[len(days)-1]
	return Streak{Current: current, Longest: longest, LastDay: &last}
}
