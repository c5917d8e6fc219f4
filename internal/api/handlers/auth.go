package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/api/middleware"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	response, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserExists) {
			status = http.StatusConflict
		}
		utils.SendError(c, status, "Signup failed", err)
		return
	}

	utils.SendCreated(c, "User created successfully", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "Login failed", err)
		return
	}

	utils.SendSuccess(c, "Login successful", response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		utils.SendNotFound(c, "User not found", err)
		return
	}

	utils.SendSuccess(c, "Profile retrieved successfully", user)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request")
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "Token refresh failed", err)
		return
	}

	utils.SendSuccess(c, "Token refreshed successfully", response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		utils.SendInternalError(c, "Logout failed", err)
		return
	}

	utils.SendSuccess(c, "Logged out successfully", nil)
}
