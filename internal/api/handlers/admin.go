package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type AdminHandler struct {
	adminService      *services.AdminService
	reputationService *services.ReputationService
}

func NewAdminHandler(adminService *services.AdminService, reputationService *services.ReputationService) *AdminHandler {
	return &AdminHandler{adminService: adminService, reputationService: reputationService}
}

func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch dashboard stats", err)
		return
	}

	utils.SendSuccess(c, "Dashboard stats retrieved successfully", stats)
}

// UploadSkillsCSV imports the skill catalog from a "csv" form file with a
// name,category,description header.
func (h *AdminHandler) UploadSkillsCSV(c *gin.Context) {
	header, err := c.FormFile("csv")
	if err != nil {
		utils.SendValidationError(c, "No CSV file provided")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.SendValidationError(c, "Failed to open CSV file")
		return
	}
	defer file.Close()

	result, err := h.adminService.ImportSkillsCSV(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCSV) {
			utils.SendError(c, http.StatusBadRequest, "Failed to process CSV", err)
			return
		}
		utils.SendInternalError(c, "Failed to process CSV", err)
		return
	}

	utils.SendSuccess(c, result.Message, result)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	if err := h.adminService.SetUserActive(c.Request.Context(), userID, *req.IsActive); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.SendNotFound(c, "User not found", err)
			return
		}
		utils.SendInternalError(c, "Failed to update user status", err)
		return
	}

	utils.SendSuccess(c, "User status updated successfully", nil)
}

// RecomputeReputations rebuilds every reputation aggregate now instead of
// waiting for the schedule.
func (h *AdminHandler) RecomputeReputations(c *gin.Context) {
	updated, err := h.reputationService.RecomputeAll(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to recompute reputations", err)
		return
	}

	utils.SendSuccess(c, "Reputations recomputed successfully", gin.H{"updated": updated})
}
