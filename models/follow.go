package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowStatus is the state of a follow relationship.
type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
	FollowRejected FollowStatus = "REJECTED"
)

// Follow is a directed edge from FollowerID to UserID (the target). At most
// one row exists per (user_id, follower_id) pair regardless of history: a
// rejected row is reactivated to PENDING on re-request instead of duplicated.
type Follow struct {
	ID         string       `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint         `gorm:"not null;uniqueIndex:idx_follows_pair" json:"user_id"`
	FollowerID uint         `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	Status     FollowStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	User       *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Follower   *User        `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
}

// BeforeCreate assigns a UUID primary key when one is not provided.
func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
