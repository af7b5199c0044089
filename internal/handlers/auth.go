package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/choreboard-dev/choreboard/db"
	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/auth"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/types"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.log.Error("failed to check existing user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		h.log.Error("failed to create user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Username)

	if err != nil {
		h.log.Error("failed to generate JWT", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:       newUser.ID,
			Username: newUser.Username,
			Email:    newUser.Email,
		},
	})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	err := db.DB.Where("username = ?", req.Username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
			return
		}
		h.log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		h.log.Error("failed to generate JWT", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  h.userResponse(&user),
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		h.log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": h.userResponse(&user)})
}

// userResponse assembles the user view with their apartment summary, if any.
func (h *Handler) userResponse(user *models.User) types.UserResponse {
	response := types.UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		TotalCleanings: user.TotalCleanings,
	}

	membership, err := h.memberships.MembershipOf(user.ID)

	if err != nil {
		if !errors.Is(err, apperr.ErrNotAMember) {
			h.log.Warn("failed to load membership", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		return response
	}

	response.Apartment = &types.ApartmentInfo{
		ApartmentID:  membership.ApartmentID,
		BuildingCode: membership.Apartment.Building.Code,
		Number:       membership.Apartment.Number,
		Role:         membership.Role,
	}

	return response
}
