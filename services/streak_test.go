package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitloop/backend/models"
)

func TestWalkStreak(t *testing.T) {
	day := func(d int) time.Time { return utcDate(2024, time.March, d, 0) }
	today := day(10)

	cases := []struct {
		name    string
		days    []time.Time
		current int
		longest int
	}{
		{name: "empty", days: nil, current: 0, longest: 0},
		{name: "single today", days: []time.Time{day(10)}, current: 1, longest: 1},
		{name: "single yesterday", days: []time.Time{day(9)}, current: 1, longest: 1},
		{name: "single stale", days: []time.Time{day(8)}, current: 0, longest: 1},
		{
			name:    "run ending today",
			days:    []time.Time{day(7), day(8), day(9), day(10)},
			current: 4,
			longest: 4,
		},
		{
			name:    "gap keeps longest",
			days:    []time.Time{day(1), day(2), day(3), day(9), day(10)},
			current: 2,
			longest: 3,
		},
		{
			name:    "stale tail breaks current",
			days:    []time.Time{day(5), day(6), day(7), day(8)},
			current: 0,
			longest: 4,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, longest := WalkStreak(tc.days, today)
			require.Equal(t, tc.current, current)
			require.Equal(t, tc.longest, longest)
		})
	}
}

func TestRecomputeOverall(t *testing.T) {
	db := newTestDB(t)
	periods := NewPeriodService(time.UTC)
	svc := NewStreakService(periods)
	ctx := context.Background()
	user := seedUser(t, db, "alice")
	read := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)
	run := seedHabit(t, db, user.ID, "Run", models.FrequencyWeekly)

	add := func(habitID string, at time.Time) {
		c := models.Completion{HabitID: habitID, PeriodKey: at.Format("2006-01-02"), OccurredAt: at}
		require.NoError(t, db.Create(&c).Error)
	}

	// Out-of-order inserts across two habits, with two completions sharing
	// March 2. The walk sees unique days 1, 2, 3.
	add(run.ID, utcDate(2024, time.March, 2, 18))
	add(read.ID, utcDate(2024, time.March, 3, 9))
	add(read.ID, utcDate(2024, time.March, 1, 9))
	add(read.ID, utcDate(2024, time.March, 2, 9))

	current, longest, err := svc.RecomputeOverall(ctx, db, user.ID, utcDate(2024, time.March, 3, 20))
	require.NoError(t, err)
	require.Equal(t, 3, current)
	require.Equal(t, 3, longest)

	owner := mustLoadUser(t, db, user.ID)
	require.Equal(t, 3, owner.OverallStreak)
	require.Equal(t, 3, owner.LongestOverallStreak)

	// Two days later the run is stale; the cached fields are overwritten, not
	// merely incremented.
	current, longest, err = svc.RecomputeOverall(ctx, db, user.ID, utcDate(2024, time.March, 5, 9))
	require.NoError(t, err)
	require.Equal(t, 0, current)
	require.Equal(t, 3, longest)
	require.Equal(t, 0, mustLoadUser(t, db, user.ID).OverallStreak)
}

// A recompute that lands on the already-stored values must succeed; the user
// check cannot ride on how many rows the UPDATE reports as changed.
func TestRecomputeOverallUnchangedValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(NewPeriodService(time.UTC))
	ctx := context.Background()
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)

	c := models.Completion{HabitID: habit.ID, PeriodKey: "2024-03-01", OccurredAt: utcDate(2024, time.March, 1, 9)}
	require.NoError(t, db.Create(&c).Error)

	now := utcDate(2024, time.March, 1, 20)
	current, longest, err := svc.RecomputeOverall(ctx, db, user.ID, now)
	require.NoError(t, err)
	require.Equal(t, 1, current)
	require.Equal(t, 1, longest)

	current, longest, err = svc.RecomputeOverall(ctx, db, user.ID, now)
	require.NoError(t, err)
	require.Equal(t, 1, current)
	require.Equal(t, 1, longest)
}

func TestRecomputeOverallNoCompletions(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(NewPeriodService(time.UTC))
	user := seedUser(t, db, "alice")

	current, longest, err := svc.RecomputeOverall(context.Background(), db, user.ID, utcDate(2024, time.March, 1, 9))
	require.NoError(t, err)
	require.Zero(t, current)
	require.Zero(t, longest)
}

func TestRecomputeOverallUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(NewPeriodService(time.UTC))

	_, _, err := svc.RecomputeOverall(context.Background(), db, 42, utcDate(2024, time.March, 1, 9))
	require.ErrorIs(t, err, ErrUserNotFound)
}
