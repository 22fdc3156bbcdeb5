package api

import (
	"errors"
	"strings"
	"time"

	"example.com/workout/internal/domain"
	"example.com/workout/internal/stats"
)

// LoginRequest carries credentials forwarded to the identity service.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserView is the public shape of a user profile.
type UserView struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	ExternalRef string `json:"external_ref,omitempty"`
}

// LoginResponse returns the session token and the resolved profile.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// LogWorkoutRequest accepts the loosely-typed payloads older clients send.
// Date and Duration tolerate several encodings, see flex.go.
type LogWorkoutRequest struct {
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Duration  FlexMinutes     `json:"duration"`
	Exercises []ExerciseInput `json:"exercises"`
	Calories  int             `json:"calories"`
	Notes     string          `json:"notes"`
}

// Validate enforces the minimal invariants before the record reaches the
// domain layer. Dates and durations are allowed to be absent.
func (r LogWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if r.Calories < 0 {
		return errors.New("calories must not be negative")
	}
	for _, ex := range r.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return errors.New("exercise name is required")
		}
	}
	return nil
}

// LogWorkoutResponse acknowledges a create. Replay marks an idempotent hit.
type LogWorkoutResponse struct {
	WorkoutID string `json:"workout_id"`
	Replay    bool   `json:"replay"`
}

// WorkoutView is the public shape of a workout record. Date is omitted for
// legacy records whose timestamp could not be recovered.
type WorkoutView struct {
	WorkoutID   string            `json:"workout_id"`
	Category    string            `json:"category"`
	Date        *time.Time        `json:"date,omitempty"`
	DurationMin int               `json:"duration_min,omitempty"`
	Exercises   []domain.Exercise `json:"exercises,omitempty"`
	Calories    int               `json:"calories,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toWorkoutView(w domain.Workout) WorkoutView {
	view := WorkoutView{
		WorkoutID:   w.ID,
		Category:    w.Category,
		DurationMin: w.DurationMin,
		Exercises:   w.Exercises,
		Calories:    w.Calories,
		Notes:       w.Notes,
		CreatedAt:   w.CreatedAt,
	}
	if !w.Date.IsZero() {
		date := w.Date
		view.Date = &date
	}
	return view
}

// ListWorkoutsResponse is a keyset-paginated page of workouts.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// GoalView pairs a goal with its clamped completion percentage.
type GoalView struct {
	stats.Goal
	Percent int `json:"percent"`
}

// StatsResponse is the dashboard aggregate.
type StatsResponse struct {
	Summary    stats.Summary         `json:"summary"`
	Streak     stats.Streak          `json:"streak"`
	Goals      []GoalView            `json:"goals"`
	Recent     []WorkoutView         `json:"recent"`
	Categories []stats.CategoryCount `json:"categories"`
}

// HeatmapResponse echoes the resolved window and filter with the buckets.
type HeatmapResponse struct {
	Metric   string                `json:"metric"`
	Category string                `json:"category"`
	Start    time.Time             `json:"start"`
	End      time.Time             `json:"end"`
	Buckets  []stats.HeatmapBucket `json:"buckets"`
}

// MonthGroupView is one month of history.
type MonthGroupView struct {
	Label string        `json:"label"`
	Items []WorkoutView `json:"items"`
}

// MonthsResponse lists history grouped by calendar month, newest first.
type MonthsResponse struct {
	Groups []MonthGroupView `json:"groups"`
}

// LogWeightRequest records one body-weight measurement.
type LogWeightRequest struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// WeightView is the public shape of a weight entry.
type WeightView struct {
	EntryID   string    `json:"entry_id"`
	Day       time.Time `json:"day"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

func toWeightView(e domain.WeightEntry) WeightView {
	return WeightView{
		EntryID:   e.ID,
		Day:       e.Day,
		Value:     e.Value,
		Unit:      e.Unit,
		CreatedAt: e.CreatedAt,
	}
}

// WeightsResponse returns the raw entries plus the derived trend.
type WeightsResponse struct {
	Items []WeightView      `json:"items"`
	Trend stats.WeightTrend `json:"trend"`
}
