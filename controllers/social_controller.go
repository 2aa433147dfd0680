package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

// SocialController exposes the follow relationship endpoints.
type SocialController struct {
	follows *services.FollowService
}

// NewSocialController creates a new controller instance.
func NewSocialController(follows *services.FollowService) *SocialController {
	return &SocialController{follows: follows}
}

// SendRequest creates a follow request from the authenticated user to the
// target user.
func (s *SocialController) SendRequest(ctx *gin.Context) {
	followerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	follow, err := s.follows.SendRequest(ctx, followerID, req.UserID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Created(ctx, gin.H{"request": follow})
}

// Respond accepts or rejects a pending follow request addressed to the
// authenticated user.
func (s *SocialController) Respond(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		RequestID string `json:"request_id" binding:"required,uuid"`
		Action    string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	follow, err := s.follows.Respond(ctx, req.RequestID, userID, models.FollowStatus(req.Action))
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"request": follow})
}

// Requests lists pending follow requests addressed to the authenticated user.
func (s *SocialController) Requests(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	requests, err := s.follows.PendingRequests(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"requests": requests})
}

// Followers lists accepted followers of a user.
func (s *SocialController) Followers(ctx *gin.Context) {
	userID, ok := paramUserID(ctx)
	if !ok {
		return
	}

	follows, err := s.follows.Followers(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"followers": follows})
}

// Following lists users a user follows with an accepted relationship.
func (s *SocialController) Following(ctx *gin.Context) {
	userID, ok := paramUserID(ctx)
	if !ok {
		return
	}

	follows, err := s.follows.Following(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"following": follows})
}

func paramUserID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
