package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

const analyticsCacheTTL = time.Minute

// AnalyticsController serves read-only projections over completions: totals,
// per-habit stats and the recent-activity heatmap. It never mutates cached
// streak counters; the streak numbers it reports come from the same walk the
// reconstructor uses.
type AnalyticsController struct {
	db      *gorm.DB
	periods *services.PeriodService
}

// NewAnalyticsController creates a new controller instance.
func NewAnalyticsController(db *gorm.DB, periods *services.PeriodService) *AnalyticsController {
	return &AnalyticsController{db: db, periods: periods}
}

type habitStat struct {
	Name  string   `json:"name"`
	Total int      `json:"total"`
	Dates []string `json:"dates"`
}

type heatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// GetAnalytics returns the authenticated user's completion analytics.
func (a *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("cache:analytics:user:%d", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var rows []struct {
		HabitID    string
		Name       string
		OccurredAt time.Time
	}
	err := a.db.Model(&models.Completion{}).
		Select("completions.habit_id", "habits.name", "completions.occurred_at").
		Joins("JOIN habits ON habits.id = completions.habit_id").
		Where("habits.user_id = ?", userID).
		Order("completions.occurred_at ASC").
		Scan(&rows).Error
	if err != nil {
		serviceError(ctx, err)
		return
	}

	stats := map[string]*habitStat{}
	dayCounts := map[time.Time]int{}
	daySet := map[time.Time]struct{}{}
	for _, row := range rows {
		day := a.periods.DayOf(row.OccurredAt)
		stat, ok := stats[row.HabitID]
		if !ok {
			stat = &habitStat{Name: row.Name}
			stats[row.HabitID] = stat
		}
		stat.Total++
		stat.Dates = append(stat.Dates, day.Format("2006-01-02"))
		dayCounts[day]++
		daySet[day] = struct{}{}
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	today := a.periods.DayOf(timeNow())
	current, longest := services.WalkStreak(days, today)

	heatmap := make([]heatmapDay, 0, 30)
	for i := 29; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		heatmap = append(heatmap, heatmapDay{
			Date:  day.Format("2006-01-02"),
			Count: dayCounts[day],
		})
	}

	resp := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{
		"total_completions": len(rows),
		"current_streak":    current,
		"longest_streak":    longest,
		"habit_stats":       stats,
		"streak_chart":      heatmap,
	}}
	if b, err := json.Marshal(resp); err == nil {
		utils.CacheSetBytes(cacheKey, b, analyticsCacheTTL)
	}
	ctx.JSON(http.StatusOK, resp)
}
