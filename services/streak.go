package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/backend/models"
)

// StreakService recomputes a user's cross-habit streak counters by replaying
// the full completion history. It is the only code path that derives the
// overall streak; the cached fields on User are never incremented in place.
type StreakService struct {
	periods *PeriodService
}

// NewStreakService creates a new aggregate streak reconstructor.
func NewStreakService(periods *PeriodService) *StreakService {
	return &StreakService{periods: periods}
}

// RecomputeOverall replays every completion belonging to any of the user's
// habits, projected to unique local calendar days, and overwrites the user's
// cached counters with the result. The db handle is supplied by the caller so
// the write joins the completion transaction.
func (s *StreakService) RecomputeOverall(ctx context.Context, db *gorm.DB, userID uint, now time.Time) (current, longest int, err error) {
	// Existence is checked up front; an UPDATE that changes nothing reports
	// zero affected rows under MySQL's changed-rows semantics, so row counts
	// cannot distinguish a missing user from an unchanged one.
	var user models.User
	err = db.WithContext(ctx).Select("id").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, err
	}

	var instants []time.Time
	err = db.WithContext(ctx).
		Model(&models.Completion{}).
		Joins("JOIN habits ON habits.id = completions.habit_id").
		Where("habits.user_id = ?", userID).
		Order("completions.occurred_at ASC").
		Pluck("completions.occurred_at", &instants).Error
	if err != nil {
		return 0, 0, err
	}

	days := s.uniqueDays(instants)
	current, longest = WalkStreak(days, s.periods.DayOf(now))

	err = db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"overall_streak":         current,
			"longest_overall_streak": longest,
		}).Error
	if err != nil {
		return 0, 0, err
	}
	return current, longest, nil
}

// uniqueDays projects instants onto local calendar days, deduplicates them
// (several habits completed the same day count once) and sorts ascending.
func (s *StreakService) uniqueDays(instants []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(instants))
	days := make([]time.Time, 0, len(instants))
	for _, t := range instants {
		day := s.periods.DayOf(t)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// WalkStreak walks sorted unique calendar days and returns the live current
// streak and the longest run. The current streak is the final run only when
// the last day is today or yesterday; an older tail means the streak is
// broken and current is 0. Analytics reads use this same walk, so there is a
// single definition of the aggregate streak.
func WalkStreak(days []time.Time, today time.Time) (current, longest int) {
	run := 0
	for i, day := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	if len(days) == 0 {
		return 0, 0
	}

	last := days[len(days)-1]
	if last.Equal(today) || last.AddDate(0, 0, 1).Equal(today) {
		current = run
	}
	return current, longest
}
