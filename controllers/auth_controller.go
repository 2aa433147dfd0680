package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/backend/models"
	"github.com/habitloop/backend/utils"
)

const tokenDuration = 7 * 24 * time.Hour

// AuthController handles registration, login and account lookups.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new account and returns an access token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=3,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=100"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "user already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to check existing user")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to hash password")
		return
	}

	user := models.User{
		Name:         utils.Sanitize(strings.TrimSpace(req.Name)),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40910, "user already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Name, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Created(ctx, gin.H{"token": token, "user": user})
}

// Login verifies credentials and returns an access token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		// Same answer for unknown email and wrong password.
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Name, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user including the cached streak counters.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// SearchUsers finds users by name or email fragment.
func (a *AuthController) SearchUsers(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Error(ctx, http.StatusBadRequest, 40003, "search query is required")
		return
	}

	var users []models.User
	pattern := "%" + q + "%"
	err := a.db.
		Select("id", "name", "email").
		Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Limit(20).
		Find(&users).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to search users")
		return
	}

	utils.Success(ctx, gin.H{"users": users})
}
