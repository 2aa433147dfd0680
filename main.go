package main

import (
	"github.com/habitloop/backend/config"
	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/routes"
	"github.com/habitloop/backend/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Habit{},
		&models.Completion{},
		&models.Follow{},
		&models.FeedEntry{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
