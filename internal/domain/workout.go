package domain

import "time"

// Set is one structured set within an exercise: repetitions at a weight.
type Set struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Exercise is one entry in a workout. Older records carry only a textual set
// description ("3x10 @ 25kg"); newer ones carry structured sets. Either field
// may be empty, never both populated by the API layer.
type Exercise struct {
	Name     string `json:"name"`
	SetsText string `json:"sets_text,omitempty"`
	Sets     []Set  `json:"sets,omitempty"`
}

// Workout is the canonical workout record stored in Postgres.
//
// Date is the sole temporal anchor for aggregation; a zero Date marks a
// malformed legacy record and excludes it from date-keyed statistics.
// DurationMin of 0 means unknown, Calories of 0 means no explicit override.
type Workout struct {
	ID          string
	UserID      string
	Category    string
	Date        time.Time
	DurationMin int
	Exercises   []Exercise
	Calories    int
	Notes       string
	CreatedAt   time.Time
}

// WeightEntry is a single body-weight measurement.
type WeightEntry struct {
	ID        string
	UserID    string
	Day       time.Time
	Value     float64
	Unit      string
	CreatedAt time.Time
}

// User mirrors the profile returned by the external identity service.
type User struct {
	ID          string
	Username    string
	Name        string
	ExternalRef string
	LastLogin   time.Time
}
