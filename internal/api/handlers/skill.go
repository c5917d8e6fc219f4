package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type SkillHandler struct {
	skillService *services.SkillService
}

func NewSkillHandler(skillService *services.SkillService) *SkillHandler {
	return &SkillHandler{skillService: skillService}
}

func (h *SkillHandler) ListSkills(c *gin.Context) {
	skills, err := h.skillService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch skills", err)
		return
	}
	utils.SendSuccess(c, "Skills retrieved successfully", skills)
}

func (h *SkillHandler) ListCategories(c *gin.Context) {
	categories, err := h.skillService.Categories(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch categories", err)
		return
	}
	utils.SendSuccess(c, "Categories retrieved successfully", categories)
}
