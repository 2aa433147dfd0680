package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

// timeNow is the boundary clock. The services receive the instant explicitly
// so their logic stays deterministic; tests substitute this variable.
var timeNow = time.Now

// CompletionController exposes completion recording and history.
type CompletionController struct {
	completions *services.CompletionService
}

// NewCompletionController creates a new controller instance.
func NewCompletionController(completions *services.CompletionService) *CompletionController {
	return &CompletionController{completions: completions}
}

// Complete marks a habit complete for the current period.
func (c *CompletionController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	habitID := ctx.Param("id")

	completion, err := c.completions.Record(ctx, habitID, userID, timeNow())
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix("cache:analytics:user:" + strconv.Itoa(int(userID)))

	utils.Created(ctx, gin.H{"completion": completion})
}

// History lists a habit's completions, newest first.
func (c *CompletionController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	habitID := ctx.Param("id")

	completions, err := c.completions.History(ctx, habitID, userID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"habit_id": habitID, "completions": completions})
}
