package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitloop/backend/models"
)

func TestRecordFirstCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)

	now := utcDate(2024, time.March, 1, 9)
	completion, err := svc.Record(context.Background(), habit.ID, user.ID, now)
	require.NoError(t, err)
	require.Equal(t, habit.ID, completion.HabitID)
	require.Equal(t, "2024-03-01", completion.PeriodKey)

	got := mustLoadHabit(t, db, habit.ID)
	require.Equal(t, 1, got.CurrentStreak)
	require.Equal(t, 1, got.LongestStreak)
	require.NotNil(t, got.LastCompletedAt)

	owner := mustLoadUser(t, db, user.ID)
	require.Equal(t, 1, owner.OverallStreak)
	require.Equal(t, 1, owner.LongestOverallStreak)
}

func TestRecordDuplicateInPeriod(t *testing.T) {
	cases := []struct {
		name   string
		freq   models.Frequency
		first  time.Time
		second time.Time
		next   time.Time
	}{
		{
			name:   "daily",
			freq:   models.FrequencyDaily,
			first:  utcDate(2024, time.March, 1, 9),
			second: utcDate(2024, time.March, 1, 21),
			next:   utcDate(2024, time.March, 2, 9),
		},
		{
			// Tue and Sun of the same ISO week collide; next Monday does not.
			name:   "weekly",
			freq:   models.FrequencyWeekly,
			first:  utcDate(2024, time.March, 12, 9),
			second: utcDate(2024, time.March, 17, 9),
			next:   utcDate(2024, time.March, 18, 9),
		},
		{
			name:   "monthly",
			freq:   models.FrequencyMonthly,
			first:  utcDate(2024, time.March, 2, 9),
			second: utcDate(2024, time.March, 30, 9),
			next:   utcDate(2024, time.April, 1, 9),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := newTestCompletionService(db)
			user := seedUser(t, db, "alice")
			habit := seedHabit(t, db, user.ID, "Run", tc.freq)

			_, err := svc.Record(context.Background(), habit.ID, user.ID, tc.first)
			require.NoError(t, err)

			_, err = svc.Record(context.Background(), habit.ID, user.ID, tc.second)
			require.ErrorIs(t, err, ErrAlreadyCompleted)

			// The rejected attempt must leave no trace.
			var count int64
			require.NoError(t, db.Model(&models.Completion{}).Where("habit_id = ?", habit.ID).Count(&count).Error)
			require.EqualValues(t, 1, count)
			require.Equal(t, 1, mustLoadHabit(t, db, habit.ID).CurrentStreak)

			_, err = svc.Record(context.Background(), habit.ID, user.ID, tc.next)
			require.NoError(t, err)
		})
	}
}

func TestRecordUnknownOrForeignHabit(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	habit := seedHabit(t, db, alice.ID, "Read", models.FrequencyDaily)

	now := utcDate(2024, time.March, 1, 9)

	_, err := svc.Record(context.Background(), "no-such-habit", alice.ID, now)
	require.ErrorIs(t, err, ErrHabitNotFound)

	// Someone else's habit looks exactly like a missing one.
	_, err = svc.Record(context.Background(), habit.ID, bob.ID, now)
	require.ErrorIs(t, err, ErrHabitNotFound)
}

func TestHabitStreakScenario(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)
	base := utcDate(2024, time.March, 1, 9)

	record := func(dayOffset int) error {
		_, err := svc.Record(context.Background(), habit.ID, user.ID, base.AddDate(0, 0, dayOffset))
		return err
	}

	require.NoError(t, record(0))
	require.NoError(t, record(1))
	require.NoError(t, record(2))
	got := mustLoadHabit(t, db, habit.ID)
	require.Equal(t, 3, got.CurrentStreak)
	require.Equal(t, 3, got.LongestStreak)

	// Day 3 skipped; day 4 restarts the run but the best stays.
	require.NoError(t, record(4))
	got = mustLoadHabit(t, db, habit.ID)
	require.Equal(t, 1, got.CurrentStreak)
	require.Equal(t, 3, got.LongestStreak)

	require.NoError(t, record(5))
	got = mustLoadHabit(t, db, habit.ID)
	require.Equal(t, 2, got.CurrentStreak)
	require.Equal(t, 3, got.LongestStreak)
	require.LessOrEqual(t, got.CurrentStreak, got.LongestStreak)
}

// The per-habit streak counts raw calendar-day gaps no matter the frequency: a
// weekly habit completed on consecutive days extends even across an ISO week
// boundary, while completions in adjacent weeks more than a day apart reset.
func TestWeeklyHabitStreaksByDay(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Review", models.FrequencyWeekly)

	// Sunday 2024-03-17 closes one ISO week, Monday the 18th opens the next;
	// one day apart, so the streak extends.
	_, err := svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.March, 17, 9))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.March, 18, 9))
	require.NoError(t, err)
	require.Equal(t, 2, mustLoadHabit(t, db, habit.ID).CurrentStreak)

	// The following Monday is the adjacent ISO week but seven days out, so
	// the streak resets rather than extending.
	_, err = svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.March, 25, 9))
	require.NoError(t, err)
	got := mustLoadHabit(t, db, habit.ID)
	require.Equal(t, 1, got.CurrentStreak)
	require.Equal(t, 2, got.LongestStreak)
}

func TestMonthlyHabitStreaksByDay(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Budget", models.FrequencyMonthly)

	// Last day of March then first of April: adjacent months, adjacent days.
	_, err := svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.March, 31, 9))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.April, 1, 9))
	require.NoError(t, err)
	require.Equal(t, 2, mustLoadHabit(t, db, habit.ID).CurrentStreak)

	// Mid-May is the adjacent month but weeks away; the streak resets.
	_, err = svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.May, 15, 9))
	require.NoError(t, err)
	require.Equal(t, 1, mustLoadHabit(t, db, habit.ID).CurrentStreak)
}

func TestHabitStreakAcrossMonthBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)

	_, err := svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.January, 31, 9))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), habit.ID, user.ID, utcDate(2024, time.February, 1, 9))
	require.NoError(t, err)

	require.Equal(t, 2, mustLoadHabit(t, db, habit.ID).CurrentStreak)
}

func TestRecordFeedEmission(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)
	base := utcDate(2024, time.March, 1, 9)

	countType := func(typ models.FeedType) int64 {
		var n int64
		require.NoError(t, db.Model(&models.FeedEntry{}).
			Where("user_id = ? AND type = ?", user.ID, typ).Count(&n).Error)
		return n
	}

	// First completion: streak goes 0 to 1, both entries appear.
	_, err := svc.Record(context.Background(), habit.ID, user.ID, base)
	require.NoError(t, err)
	require.EqualValues(t, 1, countType(models.FeedHabitCompleted))
	require.EqualValues(t, 1, countType(models.FeedStreakUpdated))

	// Next day extends the streak.
	_, err = svc.Record(context.Background(), habit.ID, user.ID, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.EqualValues(t, 2, countType(models.FeedStreakUpdated))

	// A gap resets the streak to 1, which is no improvement over 2, so only
	// the completion entry is written.
	_, err = svc.Record(context.Background(), habit.ID, user.ID, base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.EqualValues(t, 3, countType(models.FeedHabitCompleted))
	require.EqualValues(t, 2, countType(models.FeedStreakUpdated))
}

func TestRecordOverallStreakAcrossHabits(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	read := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)
	run := seedHabit(t, db, user.ID, "Run", models.FrequencyDaily)
	base := utcDate(2024, time.March, 1, 9)

	// Day 0: both habits. Day 1: only one. The overall streak counts unique
	// days, not completions.
	_, err := svc.Record(context.Background(), read.ID, user.ID, base)
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), run.ID, user.ID, base.Add(2*time.Hour))
	require.NoError(t, err)

	owner := mustLoadUser(t, db, user.ID)
	require.Equal(t, 1, owner.OverallStreak)

	_, err = svc.Record(context.Background(), read.ID, user.ID, base.AddDate(0, 0, 1))
	require.NoError(t, err)

	owner = mustLoadUser(t, db, user.ID)
	require.Equal(t, 2, owner.OverallStreak)
	require.Equal(t, 2, owner.LongestOverallStreak)
}

func TestHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCompletionService(db)
	user := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	habit := seedHabit(t, db, user.ID, "Read", models.FrequencyDaily)
	base := utcDate(2024, time.March, 1, 9)

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), habit.ID, user.ID, base.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	completions, err := svc.History(context.Background(), habit.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, completions, 3)
	// Newest first.
	require.True(t, completions[0].OccurredAt.After(completions[2].OccurredAt))

	_, err = svc.History(context.Background(), habit.ID, other.ID)
	require.ErrorIs(t, err, ErrHabitNotFound)
}
