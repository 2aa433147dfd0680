package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Completion records that a habit was completed within one period. Rows are
// append-only. The composite unique index on (habit_id, period_key) is the
// database backstop for the at-most-one-completion-per-period rule: two
// concurrent requests that both pass the in-transaction check cannot both
// insert.
type Completion struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	HabitID    string    `gorm:"size:36;not null;uniqueIndex:idx_completions_habit_period" json:"habit_id"`
	PeriodKey  string    `gorm:"size:16;not null;uniqueIndex:idx_completions_habit_period" json:"-"`
	OccurredAt time.Time `gorm:"index;not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when one is not provided.
func (c *Completion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
