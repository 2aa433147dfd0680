package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/habitloop/backend/models"
)

// FollowService governs the follow relationship state machine:
// PENDING -> ACCEPTED | REJECTED, with REJECTED re-enterable through a new
// request that reuses the existing row.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService creates a new follow service.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// SendRequest creates a follow request from follower to target. An existing
// PENDING or ACCEPTED relationship is a conflict; a REJECTED one is
// reactivated to PENDING in place rather than duplicated.
func (s *FollowService) SendRequest(ctx context.Context, followerID, targetID uint) (*models.Follow, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var existing models.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", targetID, followerID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Status != models.FollowRejected {
			return nil, ErrFollowExists
		}
		err = s.db.WithContext(ctx).
			Model(&existing).
			Update("status", models.FollowPending).Error
		if err != nil {
			return nil, err
		}
		existing.Status = models.FollowPending
		return &existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		follow := models.Follow{
			UserID:     targetID,
			FollowerID: followerID,
			Status:     models.FollowPending,
		}
		if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
			// Concurrent request for the same pair lost the race on the
			// unique (user_id, follower_id) index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrFollowExists
			}
			return nil, err
		}
		return &follow, nil

	default:
		return nil, err
	}
}

// Respond resolves a pending request. Only the target of the request may
// respond, and only while it is PENDING.
func (s *FollowService) Respond(ctx context.Context, requestID string, responderID uint, action models.FollowStatus) (*models.Follow, error) {
	if action != models.FollowAccepted && action != models.FollowRejected {
		return nil, ErrInvalidAction
	}

	var follow models.Follow
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	// A responder who is not the target learns nothing beyond "not found".
	if follow.UserID != responderID {
		return nil, ErrRequestNotFound
	}
	if follow.Status != models.FollowPending {
		return nil, ErrRequestResolved
	}

	if err := s.db.WithContext(ctx).Model(&follow).Update("status", action).Error; err != nil {
		return nil, err
	}
	follow.Status = action
	return &follow, nil
}

// PendingRequests lists requests awaiting the target's response.
func (s *FollowService) PendingRequests(ctx context.Context, targetID uint) ([]models.Follow, error) {
	var requests []models.Follow
	err := s.db.WithContext(ctx).
		Preload("Follower").
		Where("user_id = ? AND status = ?", targetID, models.FollowPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Followers lists accepted relationships where userID is the target.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := s.db.WithContext(ctx).
		Preload("Follower").
		Where("user_id = ? AND status = ?", userID, models.FollowAccepted).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// Following lists accepted relationships where userID is the follower.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("follower_id = ? AND status = ?", userID, models.FollowAccepted).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}
