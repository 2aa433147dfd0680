package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/habitloop/backend/models"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory database migrated with all models. Each
// call gets its own database so tests stay independent.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Habit{},
		&models.Completion{},
		&models.Follow{},
		&models.FeedEntry{},
	)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedHabit(t *testing.T, db *gorm.DB, userID uint, name string, freq models.Frequency) models.Habit {
	t.Helper()
	habit := models.Habit{UserID: userID, Name: name, Frequency: freq}
	require.NoError(t, db.Create(&habit).Error)
	return habit
}

func newTestCompletionService(db *gorm.DB) *CompletionService {
	periods := NewPeriodService(time.UTC)
	streaks := NewStreakService(periods)
	feed := NewFeedService(db)
	return NewCompletionService(db, periods, streaks, feed)
}

func mustLoadHabit(t *testing.T, db *gorm.DB, id string) models.Habit {
	t.Helper()
	var habit models.Habit
	require.NoError(t, db.Where("id = ?", id).First(&habit).Error)
	return habit
}

func mustLoadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}
