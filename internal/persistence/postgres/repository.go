package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workout/internal/domain"
	"example.com/workout/internal/events"
	"example.com/workout/internal/observability"
)

// Repository provides Postgres-backed persistence for workouts, users,
// body-weight entries, and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workoutColumns = `workout_id, user_id, category, workout_date, duration_min, exercises, calories, notes, created_at`

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var w domain.Workout
	var date *time.Time
	var exercises []byte
	if err := row.Scan(&w.ID, &w.UserID, &w.Category, &date, &w.DurationMin, &exercises, &w.Calories, &w.Notes, &w.CreatedAt); err != nil {
		return nil, err
	}
	if date != nil {
		w.Date = date.UTC()
	}
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
			return nil, fmt.Errorf("decode exercises for %s: %w", w.ID, err)
		}
	}
	return &w, nil
}

// FindByIdempotency checks if a workout already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, userID, idempotencyKey string) (*domain.Workout, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 AND idempotency_key=$2`

	row := r.pool.QueryRow(ctx, query, userID, idempotencyKey)
	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// Create persists the workout and records outbox events inside a single transaction.
func (r *Repository) Create(ctx context.Context, workout domain.Workout, idempotencyKey string) error {
	exercises, err := json.Marshal(workout.Exercises)
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertWorkout = `INSERT INTO workouts (workout_id, user_id, category, workout_date, duration_min, exercises, calories, notes, idempotency_key, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err = tx.Exec(ctx, insertWorkout,
		workout.ID,
		workout.UserID,
		workout.Category,
		nullIfZeroTime(workout.Date),
		workout.DurationMin,
		exercises,
		workout.Calories,
		workout.Notes,
		nullIfEmpty(idempotencyKey),
		workout.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, workout.UserID, workout.ID, "workout.logged", events.WorkoutLogged{
		WorkoutID:   workout.ID,
		UserID:      workout.UserID,
		Category:    workout.Category,
		Date:        workout.Date,
		DurationMin: workout.DurationMin,
		Exercises:   len(workout.Exercises),
		LoggedAt:    workout.CreatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(workout.CreatedAt)
	return nil
}

// Get retrieves a workout by ID scoped to its owner.
func (r *Repository) Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 AND workout_id=$2`

	row := r.pool.QueryRow(ctx, query, userID, workoutID)
	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// ListByUser returns workouts for a user ordered by date descending, keyset paginated.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1`

	// Undated rows sort after every dated row, so pagination runs in two
	// phases. A cursor with a date resumes among dated rows but must keep the
	// NULL tail reachable; a zero-date cursor means the previous page ended
	// inside the tail and only undated rows remain.
	if cursor != nil {
		if cursor.Date.IsZero() {
			query += ` AND workout_date IS NULL AND workout_id < $3`
			args = append(args, cursor.ID)
		} else {
			query += ` AND (workout_date < $3 OR (workout_date = $3 AND workout_id < $4) OR workout_date IS NULL)`
			args = append(args, cursor.Date, cursor.ID)
		}
	}

	query += ` ORDER BY workout_date DESC NULLS LAST, workout_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Workout, 0, limit)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{Date: last.Date, ID: last.ID}
	}

	return results, nextCursor, nil
}

// HistoryByUser returns the complete workout history, newest first. The
// statistics engine needs the full collection, not a page.
func (r *Repository) HistoryByUser(ctx context.Context, userID string) ([]domain.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 ORDER BY workout_date DESC NULLS LAST, workout_id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Workout, 0)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *workout)
	}
	return results, rows.Err()
}

// Delete removes a workout owned by the user and records the deletion event.
func (r *Repository) Delete(ctx context.Context, userID, workoutID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM workouts WHERE user_id=$1 AND workout_id=$2`, userID, workoutID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrWorkoutNotFound
		return err
	}

	if err = insertOutbox(ctx, tx, userID, workoutID, "workout.deleted", events.WorkoutDeleted{
		WorkoutID: workoutID,
		UserID:    userID,
		DeletedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpsertUser stores or refreshes a user keyed by external reference, falling
// back to username for profiles without one.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (*domain.User, error) {
	const query = `INSERT INTO users (user_id, username, name, external_ref, last_login)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (username) DO UPDATE SET name=EXCLUDED.name, external_ref=EXCLUDED.external_ref, last_login=EXCLUDED.last_login
        RETURNING user_id, username, name, COALESCE(external_ref, ''), last_login`

	row := r.pool.QueryRow(ctx, query, user.ID, user.Username, user.Name, nullIfEmpty(user.ExternalRef), user.LastLogin)
	var stored domain.User
	if err := row.Scan(&stored.ID, &stored.Username, &stored.Name, &stored.ExternalRef, &stored.LastLogin); err != nil {
		return nil, err
	}
	return &stored, nil
}

// CreateWeightEntry stores a body-weight measurement.
func (r *Repository) CreateWeightEntry(ctx context.Context, entry domain.WeightEntry) error {
	const query = `INSERT INTO body_weight (entry_id, user_id, day, value, unit, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := r.pool.Exec(ctx, query, entry.ID, entry.UserID, entry.Day, entry.Value, entry.Unit, entry.CreatedAt)
	return err
}

// ListWeightEntries returns the most recent measurements, newest first.
func (r *Repository) ListWeightEntries(ctx context.Context, userID string, limit int) ([]domain.WeightEntry, error) {
	const query = `SELECT entry_id, user_id, day, value, unit, created_at
        FROM body_weight WHERE user_id=$1 ORDER BY day DESC, created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.WeightEntry, 0, limit)
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Day, &e.Value, &e.Unit, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, userID, workoutID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", workoutID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		"workout",
		workoutID,
		eventType,
		meta.Topic,
		meta.PartitionKeyFn(userID, workoutID),
		body,
		dedupeKey,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZeroTime(value time.Time) interface{} {
	if value.IsZero() {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	PartitionKeyFn func(userID, workoutID string) string
}

var eventCatalog = map[string]EventMetadata{
	"workout.logged": {
		Topic: "workout_events",
		PartitionKeyFn: func(userID, _ string) string {
			return userID
		},
	},
	"workout.deleted": {
		Topic: "workout_events",
		PartitionKeyFn: func(_, workoutID string) string {
			return workoutID
		},
	},
}
