// Package domain defines the business logic for the workout service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIdempotentReplay indicates an existing workout was found for the provided idempotency key.
	ErrIdempotentReplay = errors.New("workout already exists for idempotency key")
	// ErrWorkoutNotFound is returned when a workout cannot be located.
	ErrWorkoutNotFound = errors.New("workout not found")
)

// WorkoutRepository captures persistence operations.
type WorkoutRepository interface {
	FindByIdempotency(ctx context.Context, userID, idempotencyKey string) (*Workout, error)
	Create(ctx context.Context, workout Workout, idempotencyKey string) error
	Get(ctx context.Context, userID, workoutID string) (*Workout, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error)
	HistoryByUser(ctx context.Context, userID string) ([]Workout, error)
	Delete(ctx context.Context, userID, workoutID string) error
	UpsertUser(ctx context.Context, user User) (*User, error)
	CreateWeightEntry(ctx context.Context, entry WeightEntry) error
	ListWeightEntries(ctx context.Context, userID string, limit int) ([]WeightEntry, error)
}

// Service orchestrates workout workflows.
type Service struct {
	repo WorkoutRepository
}

// NewService constructs a Service.
func NewService(repo WorkoutRepository) *Service {
	return &Service{repo: repo}
}

// LogWorkoutInput captures the payload from the API layer.
type LogWorkoutInput struct {
	UserID         string
	Category       string
	Date           time.Time
	DurationMin    int
	Exercises      []Exercise
	Calories       int
	Notes          string
	IdempotencyKey string
}

// Cursor models the pagination token.
type Cursor struct {
	Date time.Time
	ID   string
}

// LogWorkout handles idempotent create semantics and outbox recording.
func (s *Service) LogWorkout(ctx context.Context, input LogWorkoutInput) (*Workout, bool, error) {
	if existing, err := s.repo.FindByIdempotency(ctx, input.UserID, input.IdempotencyKey); err == nil && existing != nil {
		return existing, true, nil
	}

	workout := Workout{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Category:    input.Category,
		Date:        input.Date.UTC(),
		DurationMin: input.DurationMin,
		Exercises:   input.Exercises,
		Calories:    input.Calories,
		Notes:       input.Notes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, workout, input.IdempotencyKey); err != nil {
		return nil, false, err
	}

	return &workout, false, nil
}

// GetWorkout fetches by ID.
func (s *Service) GetWorkout(ctx context.Context, userID, workoutID string) (*Workout, error) {
	workout, err := s.repo.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

// ListWorkouts fetches workouts with cursor pagination.
func (s *Service) ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error) {
	return s.repo.ListByUser(ctx, userID, cursor, limit)
}

// History returns the full workout history for a user, newest first. The
// statistics endpoints need the complete collection since streaks and
// grouping scan it in more than one pass.
func (s *Service) History(ctx context.Context, userID string) ([]Workout, error) {
	return s.repo.HistoryByUser(ctx, userID)
}

// DeleteWorkout removes a workout owned by the user.
func (s *Service) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	return s.repo.Delete(ctx, userID, workoutID)
}

// UpsertUser stores or refreshes the profile delivered by the identity service.
func (s *Service) UpsertUser(ctx context.Context, user User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.LastLogin = time.Now().UTC()
	return s.repo.UpsertUser(ctx, user)
}

// RecordWeight stores a body-weight measurement.
func (s *Service) RecordWeight(ctx context.Context, userID string, day time.Time, value float64, unit string) (*WeightEntry, error) {
	entry := WeightEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Day:       day.UTC(),
		Value:     value,
		Unit:      unit,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateWeightEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWeights returns the most recent body-weight measurements.
func (s *Service) ListWeights(ctx context.Context, userID string, limit int) ([]WeightEntry, error) {
	return s.repo.ListWeightEntries(ctx, userID, limit)
}
