package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Frequency defines how often a habit can be completed.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is a recurring activity owned by exactly one user. CurrentStreak and
// LongestStreak are maintained by the completion service; CurrentStreak never
// exceeds LongestStreak.
type Habit struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	UserID          uint         `gorm:"index;not null" json:"user_id"`
	Name            string       `gorm:"size:100;not null" json:"name"`
	Description     string       `gorm:"size:500" json:"description"`
	Category        string       `gorm:"size:100" json:"category"`
	Frequency       Frequency    `gorm:"size:16;not null" json:"frequency"`
	CurrentStreak   int          `gorm:"default:0" json:"current_streak"`
	LongestStreak   int          `gorm:"default:0" json:"longest_streak"`
	LastCompletedAt *time.Time   `json:"last_completed_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Completions     []Completion `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID primary key when one is not provided.
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
