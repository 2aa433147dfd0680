package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/habitloop/backend/models"
)

// FeedService appends and reads activity feed entries. Entries are immutable;
// there is no update path.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a new feed service.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Emit appends one feed entry. Storage failures are returned to the caller;
// whether they abort anything is the caller's decision (completion recording
// treats them as best-effort).
func (s *FeedService) Emit(ctx context.Context, userID uint, typ models.FeedType, habitID, message string) error {
	entry := models.FeedEntry{
		UserID:  userID,
		HabitID: habitID,
		Type:    typ,
		Message: message,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// UserFeed returns one user's entries, newest first.
func (s *FeedService) UserFeed(ctx context.Context, userID uint) ([]models.FeedEntry, error) {
	var entries []models.FeedEntry
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Habit").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HomeFeed returns entries from users the viewer follows with an ACCEPTED
// relationship, plus the viewer's own entries, newest first.
func (s *FeedService) HomeFeed(ctx context.Context, viewerID uint) ([]models.FeedEntry, error) {
	var followedIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", viewerID, models.FollowAccepted).
		Pluck("user_id", &followedIDs).Error
	if err != nil {
		return nil, err
	}
	followedIDs = append(followedIDs, viewerID)

	var entries []models.FeedEntry
	err = s.db.WithContext(ctx).
		Preload("User").Preload("Habit").
		Where("user_id IN ?", followedIDs).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
