package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/backend/middleware"
	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

// HabitController manages CRUD operations for habits.
type HabitController struct {
	db      *gorm.DB
	streaks *services.StreakService
	feed    *services.FeedService
}

// NewHabitController creates a new controller instance.
func NewHabitController(db *gorm.DB, streaks *services.StreakService, feed *services.FeedService) *HabitController {
	return &HabitController{db: db, streaks: streaks, feed: feed}
}

// CreateHabit creates a habit for the authenticated user and announces it on
// the feed.
func (h *HabitController) CreateHabit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
		Category    string `json:"category" binding:"max=100"`
		Frequency   string `json:"frequency" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	freq := models.Frequency(strings.ToUpper(req.Frequency))
	if !freq.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40021, "frequency must be DAILY, WEEKLY or MONTHLY")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "name cannot be empty")
		return
	}

	habit := models.Habit{
		UserID:      userID,
		Name:        name,
		Description: utils.Sanitize(req.Description),
		Category:    utils.Sanitize(req.Category),
		Frequency:   freq,
	}
	if err := h.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create habit")
		return
	}

	if err := h.feed.Emit(ctx, userID, models.FeedHabitCreated, habit.ID, "🌱 Started habit: "+habit.Name); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("feed emit failed user=%d habit=%s err=%v", userID, habit.ID, err)
		}
	}
	utils.InvalidateByPrefix("cache:feed:")

	utils.Created(ctx, gin.H{"habit": habit})
}

// ListHabits returns the authenticated user's habits with their completions.
func (h *HabitController) ListHabits(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var habits []models.Habit
	err := h.db.Preload("Completions").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&habits).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list habits")
		return
	}

	utils.Success(ctx, gin.H{"habits": habits})
}

// UpdateHabit partially updates a habit owned by the authenticated user.
func (h *HabitController) UpdateHabit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	habitID := ctx.Param("id")

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Frequency   *string `json:"frequency"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load habit")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40022, "name cannot be empty")
			return
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = utils.Sanitize(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = utils.Sanitize(*req.Category)
	}
	if req.Frequency != nil {
		freq := models.Frequency(strings.ToUpper(*req.Frequency))
		if !freq.Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40021, "frequency must be DAILY, WEEKLY or MONTHLY")
			return
		}
		updates["frequency"] = freq
	}

	if len(updates) > 0 {
		if err := h.db.Model(&habit).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update habit")
			return
		}
	}

	utils.Success(ctx, gin.H{"habit": habit})
}

// DeleteHabit removes a habit and its completions, then recomputes the
// owner's overall streak so the cached counters stay consistent with the
// remaining history.
func (h *HabitController) DeleteHabit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	habitID := ctx.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrHabitNotFound
			}
			return err
		}
		if err := tx.Where("habit_id = ?", habit.ID).Delete(&models.Completion{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&habit).Error; err != nil {
			return err
		}
		_, _, err := h.streaks.RecomputeOverall(ctx, tx, userID, timeNow())
		return err
	})
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix("cache:analytics:user:" + strconv.Itoa(int(userID)))

	ctx.Status(http.StatusNoContent)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// serviceError translates service-layer failures onto the response envelope.
func serviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrHabitNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, err.Error())
	case errors.Is(err, services.ErrRequestNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40430, err.Error())
	case errors.Is(err, services.ErrAlreadyCompleted):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrFollowExists):
		utils.Error(ctx, http.StatusConflict, 40902, err.Error())
	case errors.Is(err, services.ErrRequestResolved):
		utils.Error(ctx, http.StatusConflict, 40903, err.Error())
	case errors.Is(err, services.ErrSelfFollow):
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case errors.Is(err, services.ErrInvalidAction):
		utils.Error(ctx, http.StatusBadRequest, 40011, err.Error())
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("request failed: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
