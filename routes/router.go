package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/backend/config"
	"github.com/habitloop/backend/controllers"
	"github.com/habitloop/backend/middleware"
	"github.com/habitloop/backend/services"
	"github.com/habitloop/backend/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else if utils.Sugar != nil {
			utils.Sugar.Warnf("invalid timezone %q, falling back to local", cfg.Timezone)
		}
	}

	periodSvc := services.NewPeriodService(loc)
	streakSvc := services.NewStreakService(periodSvc)
	feedSvc := services.NewFeedService(db)
	completionSvc := services.NewCompletionService(db, periodSvc, streakSvc, feedSvc)
	followSvc := services.NewFollowService(db)

	authController := controllers.NewAuthController(db)
	habitController := controllers.NewHabitController(db, streakSvc, feedSvc)
	completionController := controllers.NewCompletionController(completionSvc)
	socialController := controllers.NewSocialController(followSvc)
	feedController := controllers.NewFeedController(feedSvc)
	analyticsController := controllers.NewAnalyticsController(db, periodSvc)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/users/search", authController.SearchUsers)
	protected.GET("/users/:id/followers", socialController.Followers)
	protected.GET("/users/:id/following", socialController.Following)
	protected.GET("/users/:id/feed", feedController.UserFeed)

	protected.POST("/habits", habitController.CreateHabit)
	protected.GET("/habits", habitController.ListHabits)
	protected.PUT("/habits/:id", habitController.UpdateHabit)
	protected.DELETE("/habits/:id", habitController.DeleteHabit)
	protected.POST("/habits/:id/complete", completionController.Complete)
	protected.GET("/habits/:id/history", completionController.History)

	protected.POST("/follow/requests", socialController.SendRequest)
	protected.POST("/follow/requests/respond", socialController.Respond)
	protected.GET("/follow/requests", socialController.Requests)

	protected.GET("/feed", feedController.HomeFeed)
	protected.GET("/analytics", analyticsController.GetAnalytics)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, 404, 40400, "route not found")
	})

	return r
}
