package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/api/middleware"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	skillService   *services.SkillService
}

func NewProfileHandler(profileService *services.ProfileService, skillService *services.SkillService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, skillService: skillService}
}

// ListProfiles handles GET /users?role=client|freelancer.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.ListProfiles(c.Request.Context(), c.Query("role"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			utils.SendValidationError(c, "Invalid role filter")
			return
		}
		utils.SendInternalError(c, "Failed to fetch profiles", err)
		return
	}

	utils.SendSuccess(c, "Profiles retrieved successfully", profiles)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.SendNotFound(c, "User not found", err)
			return
		}
		utils.SendInternalError(c, "Failed to fetch profile", err)
		return
	}

	utils.SendSuccess(c, "Profile retrieved successfully", profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameRequired):
			utils.SendValidationError(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			utils.SendNotFound(c, "User not found", err)
		default:
			utils.SendInternalError(c, "Failed to update profile", err)
		}
		return
	}

	utils.SendSuccess(c, "Profile updated successfully", user)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		utils.SendValidationError(c, "avatar file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.SendValidationError(c, "Failed to read avatar file")
		return
	}
	defer file.Close()

	user, err := h.profileService.UploadAvatar(c.Request.Context(), c.GetString(middleware.ContextUserID), services.AvatarUpload{
		Body:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStorageUnavailable):
			utils.SendError(c, http.StatusServiceUnavailable, "Avatar upload is not available", err)
		case errors.Is(err, services.ErrInvalidImageType), errors.Is(err, services.ErrImageTooLarge):
			utils.SendError(c, http.StatusBadRequest, "Invalid avatar", err)
		case errors.Is(err, services.ErrUserNotFound):
			utils.SendNotFound(c, "User not found", err)
		default:
			utils.SendInternalError(c, "Failed to upload avatar", err)
		}
		return
	}

	utils.SendSuccess(c, "Avatar updated successfully", user)
}

func (h *ProfileHandler) SetSkills(c *gin.Context) {
	var req struct {
		SkillIDs []uint `json:"skill_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	skills, err := h.skillService.SetUserSkills(c.Request.Context(), c.GetString(middleware.ContextUserID), req.SkillIDs)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.SendNotFound(c, "User not found", err)
			return
		}
		utils.SendInternalError(c, "Failed to update skills", err)
		return
	}

	utils.SendSuccess(c, "Skills updated successfully", skills)
}
