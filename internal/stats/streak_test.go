package stats

import (
	"testing"
	"time"

	"example.com/workout/internal/domain"
)

func dated(t *testing.T, value string) domain.Workout {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return domain.Workout{ID: value, UserID: "user-1", Category: "Push", Date: ts}
}

func TestComputeStreakEmpty(t *testing.T) {
	streak := ComputeStreak(nil)
	if streak.Current != 0 || streak.Longest != 0 {
		t.Fatalf("expected zero streak, got %+v", streak)
	}
	if streak.LastDay != nil {
		t.Fatalf("expected nil last day, got %v", streak.LastDay)
	}
}

func TestComputeStreakSingleDay(t *testing.T) {
	streak := ComputeStreak([]domain.Workout{dated(t, "2025-10-20T07:30:00Z")})
	if streak.Current != 1 || streak.Longest != 1 {
		t.Fatalf("expected 1/1, got %+v", streak)
	}
}

func TestComputeStreakConsecutiveDays(t *testing.T) {
	records := []domain.Workout{
		dated(t, "2025-10-20T22:45:00Z"),
		dated(t, "2025-10-21T06:10:00Z"),
		dated(t, "2025-10-22T12:00:00Z"),
	}

	streak := ComputeStreak(records)
	if streak.Current != 3 {
		t.Fatalf("expected current 3, got %d", streak.Current)
	}
	if streak.Longest != 3 {
		t.Fatalf("expected longest 3, got %d", streak.Longest)
	}
	want := time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC)
	if streak.LastDay == nil || !streak.LastDay.Equal(want) {
		t.Fatalf("expected last day %v, got %v", want, streak.LastDay)
	}
}

func TestComputeStreakGapResetsRuns(t *testing.T) {
	records := []domain.Workout{
		dated(t, "2025-10-20T08:00:00Z"),
		dated(t, "2025-10-22T08:00:00Z"),
	}

	streak := ComputeStreak(records)
	if streak.Longest != 1 {
		t.Fatalf("isolated days should give longest 1, got %d", streak.Longest)
	}
	if streak.Current != 1 {
		t.Fatalf("current should count from the most recent day only, got %d", streak.Current)
	}
}

func TestComputeStreakCountsBackwardFromMostRecent(t *testing.T) {
	records := []domain.Workout{
		dated(t, "2025-10-10T08:00:00Z"),
		dated(t, "2025-10-11T08:00:00Z"),
		dated(t, "2025-10-12T08:00:00Z"),
		dated(t, "2025-10-12T19:00:00Z"),
		// gap on the 13th
		dated(t, "2025-10-14T08:00:00Z"),
		dated(t, "2025-10-15T08:00:00Z"),
	}

	streak := ComputeStreak(records)
	if streak.Current != 2 {
		t.Fatalf("expected current 2, got %d", streak.Current)
	}
	if streak.Longest != 3 {
		t.Fatalf("expected longest 3, got %d", streak.Longest)
	}
}

func TestComputeStreakIgnoresUndatedRecords(t *testing.T) {
	records := []domain.Workout{
		dated(t, "2025-10-20T08:00:00Z"),
		{ID: "malformed", UserID: "user-1", Category: "Legs"},
	}

	streak := ComputeStreak(records)
	if streak.Current != 1 || streak.Longest != 1 {
		t.Fatalf("undated record should not affect streak, got %+v", streak)
	}
}

func TestComputeStreakIdempotent(t *testing.T) {
	records := []domain.Workout{
		dated(t, "2025-10-20T08:00:00Z"),
		dated(t, "2025-10-21T08:00:00Z"),
	}

	first := ComputeStreak(records)
	second := ComputeStreak(records)
	if first.Current != second.Current || first.Longest != second.Longest {
		t.Fatalf("results differ between calls: %+v vs %+v", first, second)
	}
	if !first.LastDay.Equal(*second.LastDay) {
		t.Fatalf("last day differs: %v vs %v", first.LastDay, second.LastDay)
	}
}
