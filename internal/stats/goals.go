package stats

import (
	"fmt"
	"math"
	"strings"

	"example.com/workout/internal/domain"
)

// GoalConfig holds the configured goal targets. The numbers are placeholder
// configuration carried over from the legacy tracker, not derived values.
type GoalConfig struct {
	WeeklyTarget     int
	VolumeCap        int
	VolumeMultiplier int
	VolumeWindow     int
	LiftMatch        string
	LiftLabel        string
	LiftTargetKg     float64
}

// DefaultGoalConfig mirrors the legacy tracker's fixed goal set.
func DefaultGoalConfig() GoalConfig {
	return GoalConfig{
		WeeklyTarget:     5,
		VolumeCap:        150,
		VolumeMultiplier: 6,
		VolumeWindow:     5,
		LiftMatch:        "bench",
		LiftLabel:        "bench press",
		LiftTargetKg:     5,
	}
}

// Goal pairs a configured target with current progress. Progress and Target
// are exposed unclamped; Percent clamps for display.
type Goal struct {
	ID       int     `json:"id"`
	Text     string  `json:"text"`
	Progress float64 `json:"progress"`
	Target   float64 `json:"target"`
	Unit     string  `json:"unit,omitempty"`
}

// Percent is the display progress, clamped to [0, 100].
func (g Goal) Percent() int {
	target := g.Target
	if target < 1 {
		target = 1
	}
	pct := int(math.Round(g.Progress / target * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ComputeGoals evaluates the fixed goal set against the history.
// thisWeekCount comes from ComputeSummary so both views agree on the window.
func ComputeGoals(records []domain.Workout, thisWeekCount int, cfg GoalConfig) []Goal {
	recentCount := len(records)
	if cfg.VolumeWindow > 0 && recentCount > cfg.VolumeWindow {
		recentCount = cfg.VolumeWindow
	}
	volume := float64(recentCount * cfg.VolumeMultiplier)
	if volume > float64(cfg.VolumeCap) {
		volume = float64(cfg.VolumeCap)
	}

	return []Goal{
		{
			ID:       1,
			Text:     fmt.Sprintf("Finish %d workouts this week", cfg.WeeklyTarget),
			Progress: float64(thisWeekCount),
			Target:   float64(cfg.WeeklyTarget),
		},
		{
			ID:       2,
			Text:     fmt.Sprintf("%d total sets in 30 days (est.)", cfg.VolumeCap),
			Progress: volume,
			Target:   float64(cfg.VolumeCap),
		},
		{
			ID:       3,
			Text:     fmt.Sprintf("Increase %s by %.0fkg", cfg.LiftLabel, cfg.LiftTargetKg),
			Progress: maxLiftWeight(records, cfg.LiftMatch),
			Target:   cfg.LiftTargetKg,
			Unit:     "kg",
		},
	}
}

// maxLiftWeight finds the heaviest set ever recorded for exercises whose name
// contains the configured substring, case-insensitively. Zero if none found.
func maxLiftWeight(records []domain.Workout, match string) float64 {
	match = strings.ToLower(match)
	var best float64
	for _, w := range records {
		for _, ex := range w.Exercises {
			if !strings.Contains(strings.ToLower(ex.Name), match) {
				continue
			}
			for _, set := range ex.Sets {
				if set.Weight > best {
					best = set.Weight
				}
			}
		}
	}
	return best
}
