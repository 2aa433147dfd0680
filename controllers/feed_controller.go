package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

const feedCacheTTL = time.Minute

// FeedController exposes the activity feed read surface.
type FeedController struct {
	feed *services.FeedService
}

// NewFeedController creates a new controller instance.
func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{feed: feed}
}

// HomeFeed returns entries from accepted followings plus the viewer's own.
func (f *FeedController) HomeFeed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("cache:feed:home:%d", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	entries, err := f.feed.HomeFeed(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	resp := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"entries": entries}}
	if b, err := json.Marshal(resp); err == nil {
		utils.CacheSetBytes(cacheKey, b, feedCacheTTL)
	}
	ctx.JSON(http.StatusOK, resp)
}

// UserFeed returns one user's entries for their profile page.
func (f *FeedController) UserFeed(ctx *gin.Context) {
	userID, ok := paramUserID(ctx)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cache:feed:user:%d", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	entries, err := f.feed.UserFeed(ctx, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	resp := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"entries": entries}}
	if b, err := json.Marshal(resp); err == nil {
		utils.CacheSetBytes(cacheKey, b, feedCacheTTL)
	}
	ctx.JSON(http.StatusOK, resp)
}
