// Package events defines the payloads published on the workout event feed.
package events

import "time"

// WorkoutLogged is emitted after a workout is persisted.
type WorkoutLogged struct {
	WorkoutID   string    `json:"workout_id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	DurationMin int       `json:"duration_min"`
	Exercises   int       `json:"exercises"`
	LoggedAt    time.Time `json:"logged_at"`
}

// WorkoutDeleted is emitted after a workout is removed.
type WorkoutDeleted struct {
	WorkoutID string    `json:"workout_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
