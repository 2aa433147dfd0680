package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/utils"
)

// CompletionService records habit completions and keeps both the per-habit
// and the user-level streak counters consistent. The uniqueness check, the
// completion insert, the habit streak write and the overall streak write all
// run in one transaction with the habit row locked, so concurrent requests
// for the same habit serialize on the database.
type CompletionService struct {
	db      *gorm.DB
	periods *PeriodService
	streaks *StreakService
	feed    *FeedService
}

// NewCompletionService creates a new completion recorder.
func NewCompletionService(db *gorm.DB, periods *PeriodService, streaks *StreakService, feed *FeedService) *CompletionService {
	return &CompletionService{db: db, periods: periods, streaks: streaks, feed: feed}
}

// Record marks the habit complete for the period containing now. It returns
// ErrHabitNotFound when the habit is missing or owned by someone else, and
// ErrAlreadyCompleted when a completion already exists in the period. Feed
// entries are emitted after the transaction commits; their failure is logged
// but never rolls back the completion.
func (s *CompletionService) Record(ctx context.Context, habitID string, userID uint, now time.Time) (*models.Completion, error) {
	var habit models.Habit
	var completion models.Completion
	var prevStreak, newStreak int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "mysql" {
			// sqlite has no row locks; the unique index below is the backstop there.
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHabitNotFound
			}
			return err
		}

		start, end := s.periods.Bounds(habit.Frequency, now)
		var count int64
		err := tx.Model(&models.Completion{}).
			Where("habit_id = ? AND occurred_at >= ? AND occurred_at < ?", habit.ID, start, end).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyCompleted
		}

		completion = models.Completion{
			HabitID:    habit.ID,
			PeriodKey:  s.periods.Key(habit.Frequency, now).String(),
			OccurredAt: now,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCompleted
			}
			return err
		}

		prevStreak = habit.CurrentStreak
		newStreak = nextHabitStreak(habit, now)
		longest := habit.LongestStreak
		if newStreak > longest {
			longest = newStreak
		}
		err = tx.Model(&models.Habit{}).Where("id = ?", habit.ID).Updates(map[string]any{
			"current_streak":    newStreak,
			"longest_streak":    longest,
			"last_completed_at": now,
		}).Error
		if err != nil {
			return err
		}

		_, _, err = s.streaks.RecomputeOverall(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, userID, models.FeedHabitCompleted, habit.ID, "✅ Completed: "+habit.Name)
	if newStreak > prevStreak {
		s.emit(ctx, userID, models.FeedStreakUpdated, habit.ID,
			fmt.Sprintf("🔥 %d-day streak on %s", newStreak, habit.Name))
	}
	return &completion, nil
}

// History returns a habit's completions, newest first.
func (s *CompletionService) History(ctx context.Context, habitID string, userID uint) ([]models.Completion, error) {
	var habit models.Habit
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	var completions []models.Completion
	err = s.db.WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("occurred_at DESC").
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

func (s *CompletionService) emit(ctx context.Context, userID uint, typ models.FeedType, habitID, message string) {
	if err := s.feed.Emit(ctx, userID, typ, habitID, message); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("feed emit failed user=%d habit=%s type=%s err=%v", userID, habitID, typ, err)
		}
	}
}

// nextHabitStreak applies the per-habit streak rule: a whole-day difference of
// exactly 1 from the previous completion extends the streak, a larger gap
// restarts it at 1. The difference is raw calendar days regardless of the
// habit's frequency, so even a WEEKLY habit streaks day to day. A zero-day
// difference cannot normally reach this point (the per-period uniqueness
// check rejects it first) and leaves the streak unchanged.
func nextHabitStreak(habit models.Habit, now time.Time) int {
	if habit.LastCompletedAt == nil {
		return 1
	}
	diff := int(now.Sub(*habit.LastCompletedAt) / (24 * time.Hour))
	switch {
	case diff == 1:
		return habit.CurrentStreak + 1
	case diff > 1:
		return 1
	default:
		return habit.CurrentStreak
	}
}
