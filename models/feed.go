package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedType classifies an activity feed entry.
type FeedType string

const (
	FeedHabitCreated   FeedType = "HABIT_CREATED"
	FeedHabitCompleted FeedType = "HABIT_COMPLETED"
	FeedStreakUpdated  FeedType = "STREAK_UPDATED"
)

// FeedEntry is an immutable activity record, append-only and ordered by
// creation time.
type FeedEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	HabitID   string    `gorm:"size:36" json:"habit_id"`
	Type      FeedType  `gorm:"size:32;not null" json:"type"`
	Message   string    `gorm:"size:255" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Habit     *Habit    `gorm:"foreignKey:HabitID" json:"habit,omitempty"`
}

// BeforeCreate assigns a UUID primary key when one is not provided.
func (e *FeedEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
