//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/workout/internal/domain"
)

func TestRepositoryWorkoutLifecycle(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fittrack"),
		postgrescontainer.WithUsername("fittrack"),
		postgrescontainer.WithPassword("fittrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)

	user, err := repo.UpsertUser(ctx, domain.User{
		ID:        uuid.NewString(),
		Username:  "integration-user",
		Name:      "Integration User",
		LastLogin: time.Now().UTC(),
	})
	require.NoError(t, err)

	workout := domain.Workout{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Category:    "Push",
		Date:        time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
		DurationMin: 45,
		Exercises: []domain.Exercise{
			{Name: "Bench Press", Sets: []domain.Set{{Reps: 8, Weight: 60}}},
		},
		Notes:     "integration",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Create(ctx, workout, "key-1"))

	replayed, err := repo.FindByIdempotency(ctx, user.ID, "key-1")
	require.NoError(t, err)
	require.NotNil(t, replayed)
	require.Equal(t, workout.ID, replayed.ID)

	stored, err := repo.Get(ctx, user.ID, workout.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Push", stored.Category)
	require.Len(t, stored.Exercises, 1)
	require.Equal(t, 60.0, stored.Exercises[0].Sets[0].Weight)

	otherUser := uuid.NewString()
	storedOther, err := repo.Get(ctx, otherUser, workout.ID)
	require.NoError(t, err)
	require.Nil(t, storedOther, "workouts must be scoped to their owner")

	var outboxCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'workout.logged'`).Scan(&outboxCount))
	require.Equal(t, 1, outboxCount)

	require.NoError(t, repo.Delete(ctx, user.ID, workout.ID))
	require.ErrorIs(t, repo.Delete(ctx, user.ID, workout.ID), domain.ErrWorkoutNotFound)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'workout.deleted'`).Scan(&outboxCount))
	require.Equal(t, 1, outboxCount)
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fittrack"),
		postgrescontainer.WithUsername("fittrack"),
		postgrescontainer.WithPassword("fittrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)
	user, err := repo.UpsertUser(ctx, domain.User{
		ID:       uuid.NewString(),
		Username: "pagination-user",
		Name:     "Pagination User",
	})
	require.NoError(t, err)

	base := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		w := domain.Workout{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Category:  "Push",
			Date:      base.AddDate(0, 0, i),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, w, uuid.NewString()))
	}

	first, cursor, err := repo.ListByUser(ctx, user.ID, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, cursor)
	require.Equal(t, base.AddDate(0, 0, 4), first[0].Date)

	second, next, err := repo.ListByUser(ctx, user.ID, cursor, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Nil(t, next)
	require.True(t, second[0].Date.Before(first[2].Date))

	history, err := repo.HistoryByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
}

func TestRepositoryListReachesUndatedTail(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fittrack"),
		postgrescontainer.WithUsername("fittrack"),
		postgrescontainer.WithPassword("fittrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)
	user, err := repo.UpsertUser(ctx, domain.User{
		ID:       uuid.NewString(),
		Username: "legacy-user",
		Name:     "Legacy User",
	})
	require.NoError(t, err)

	base := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		w := domain.Workout{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Category:  "Push",
			Date:      base.AddDate(0, 0, i),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, w, uuid.NewString()))
	}
	// Legacy records with an unrecoverable date are stored with a NULL
	// workout_date and must still come out of the list endpoint.
	for i := 0; i < 3; i++ {
		w := domain.Workout{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Category:  "Legs",
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, w, uuid.NewString()))
	}

	seen := map[string]int{}
	var cursor *domain.Cursor
	pages := 0
	for {
		page, next, err := repo.ListByUser(ctx, user.ID, cursor, 2)
		require.NoError(t, err)
		for _, w := range page {
			seen[w.ID]++
		}
		pages++
		require.LessOrEqual(t, pages, 5, "pagination must terminate")
		if next == nil {
			break
		}
		cursor = next
	}

	require.Len(t, seen, 6, "every workout, dated or not, must be paged out exactly once")
	for id, count := range seen {
		require.Equal(t, 1, count, "workout %s returned more than once", id)
	}

	// A page boundary inside the undated tail yields a zero-date cursor;
	// resuming from it must return only the remaining undated rows.
	dated, next, err := repo.ListByUser(ctx, user.ID, nil, 4)
	require.NoError(t, err)
	require.Len(t, dated, 4)
	require.NotNil(t, next)
	require.True(t, dated[3].Date.IsZero())
	require.True(t, next.Date.IsZero())

	tail, last, err := repo.ListByUser(ctx, user.ID, next, 4)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.Nil(t, last)
	for _, w := range tail {
		require.True(t, w.Date.IsZero())
	}
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
