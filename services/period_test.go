package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitloop/backend/models"
)

func utcDate(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestBoundsDaily(t *testing.T) {
	periods := NewPeriodService(time.UTC)

	start, end := periods.Bounds(models.FrequencyDaily, utcDate(2024, time.March, 15, 13))
	require.Equal(t, utcDate(2024, time.March, 15, 0), start)
	require.Equal(t, utcDate(2024, time.March, 16, 0), end)
}

func TestBoundsWeekly(t *testing.T) {
	periods := NewPeriodService(time.UTC)

	// 2024-03-15 is a Friday; the ISO week runs Mon 11th through Sun 17th.
	start, end := periods.Bounds(models.FrequencyWeekly, utcDate(2024, time.March, 15, 13))
	require.Equal(t, utcDate(2024, time.March, 11, 0), start)
	require.Equal(t, utcDate(2024, time.March, 18, 0), end)

	// Sunday belongs to the week that started the previous Monday.
	start, end = periods.Bounds(models.FrequencyWeekly, utcDate(2024, time.March, 17, 23))
	require.Equal(t, utcDate(2024, time.March, 11, 0), start)
	require.Equal(t, utcDate(2024, time.March, 18, 0), end)

	// Monday starts a fresh week.
	start, _ = periods.Bounds(models.FrequencyWeekly, utcDate(2024, time.March, 18, 0))
	require.Equal(t, utcDate(2024, time.March, 18, 0), start)
}

func TestBoundsMonthly(t *testing.T) {
	periods := NewPeriodService(time.UTC)

	start, end := periods.Bounds(models.FrequencyMonthly, utcDate(2024, time.February, 29, 13))
	require.Equal(t, utcDate(2024, time.February, 1, 0), start)
	require.Equal(t, utcDate(2024, time.March, 1, 0), end)
}

func TestKeyStrings(t *testing.T) {
	periods := NewPeriodService(time.UTC)
	now := utcDate(2024, time.January, 3, 9)

	require.Equal(t, "2024-01-03", periods.Key(models.FrequencyDaily, now).String())
	require.Equal(t, "2024-W01", periods.Key(models.FrequencyWeekly, now).String())
	require.Equal(t, "2024-01", periods.Key(models.FrequencyMonthly, now).String())
}

func TestConsecutiveDaily(t *testing.T) {
	periods := NewPeriodService(time.UTC)
	key := func(y int, m time.Month, d int) PeriodKey {
		return periods.Key(models.FrequencyDaily, utcDate(y, m, d, 12))
	}

	require.True(t, Consecutive(key(2024, time.March, 1), key(2024, time.March, 2)))
	// Month rollover.
	require.True(t, Consecutive(key(2024, time.January, 31), key(2024, time.February, 1)))
	// Year rollover.
	require.True(t, Consecutive(key(2024, time.December, 31), key(2025, time.January, 1)))

	require.False(t, Consecutive(key(2024, time.March, 1), key(2024, time.March, 3)))
	require.False(t, Consecutive(key(2024, time.March, 2), key(2024, time.March, 1)))
	require.False(t, Consecutive(key(2024, time.March, 1), key(2024, time.March, 1)))
}

func TestConsecutiveWeekly(t *testing.T) {
	periods := NewPeriodService(time.UTC)
	key := func(y int, m time.Month, d int) PeriodKey {
		return periods.Key(models.FrequencyWeekly, utcDate(y, m, d, 12))
	}

	require.True(t, Consecutive(key(2024, time.March, 11), key(2024, time.March, 18)))

	// 2024-12-29 falls in 2024-W52; 2024-12-30 is the Monday of 2025-W01.
	require.True(t, Consecutive(key(2024, time.December, 29), key(2024, time.December, 30)))

	// 2020 has 53 ISO weeks.
	require.True(t, Consecutive(key(2020, time.December, 31), key(2021, time.January, 4)))

	require.False(t, Consecutive(key(2024, time.March, 11), key(2024, time.March, 25)))
	require.False(t, Consecutive(key(2024, time.March, 18), key(2024, time.March, 11)))
}

func TestConsecutiveMonthly(t *testing.T) {
	periods := NewPeriodService(time.UTC)
	key := func(y int, m time.Month) PeriodKey {
		return periods.Key(models.FrequencyMonthly, utcDate(y, m, 15, 12))
	}

	require.True(t, Consecutive(key(2024, time.March), key(2024, time.April)))
	require.True(t, Consecutive(key(2024, time.December), key(2025, time.January)))

	require.False(t, Consecutive(key(2024, time.March), key(2024, time.May)))
	require.False(t, Consecutive(key(2024, time.December), key(2025, time.February)))
	require.False(t, Consecutive(key(2024, time.April), key(2024, time.March)))
}

func TestConsecutiveFrequencyMismatch(t *testing.T) {
	periods := NewPeriodService(time.UTC)
	now := utcDate(2024, time.March, 15, 12)

	daily := periods.Key(models.FrequencyDaily, now)
	weekly := periods.Key(models.FrequencyWeekly, now)
	require.False(t, Consecutive(daily, weekly))
	require.False(t, Consecutive(weekly, daily))
}

func TestPeriodServiceTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	periods := NewPeriodService(tokyo)

	// 2024-03-15 23:00 UTC is already March 16 in Tokyo.
	now := utcDate(2024, time.March, 15, 23)
	require.Equal(t, "2024-03-16", periods.Key(models.FrequencyDaily, now).String())

	start, _ := periods.Bounds(models.FrequencyDaily, now)
	require.Equal(t, time.Date(2024, time.March, 16, 0, 0, 0, 0, tokyo), start)
}
