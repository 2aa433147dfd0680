package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. Passwords are stored as bcrypt hashes only.
// OverallStreak and LongestOverallStreak are derived caches over the user's
// completions; they are overwritten wholesale by a full recomputation and
// never incremented in place.
type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"size:100;not null" json:"name"`
	Email                string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash         string         `gorm:"size:255" json:"-"`
	OverallStreak        int            `gorm:"default:0" json:"overall_streak"`
	LongestOverallStreak int            `gorm:"default:0" json:"longest_overall_streak"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	Habits               []Habit        `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
