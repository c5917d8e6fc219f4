package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/api/middleware"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		h.sendError(c, "Failed to create project", err)
		return
	}

	utils.SendCreated(c, "Project created successfully", project)
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var filter services.ProjectFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendValidationError(c, "Invalid query parameters")
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.sendError(c, "Failed to retrieve projects", err)
		return
	}

	utils.SendSuccess(c, "Projects retrieved successfully", projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id", "project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), projectID)
	if err != nil {
		h.sendError(c, "Failed to retrieve project", err)
		return
	}

	utils.SendSuccess(c, "Project retrieved successfully", project)
}

func (h *ProjectHandler) AssignProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id", "project ID")
	if !ok {
		return
	}

	var req services.AssignProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	project, err := h.projectService.Assign(c.Request.Context(), projectID, c.GetString(middleware.ContextUserID), req.FreelancerID)
	if err != nil {
		h.sendError(c, "Failed to assign project", err)
		return
	}

	utils.SendSuccess(c, "Project assigned successfully", project)
}

func (h *ProjectHandler) CompleteProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id", "project ID")
	if !ok {
		return
	}

	project, err := h.projectService.Complete(c.Request.Context(), projectID, c.GetString(middleware.ContextUserID))
	if err != nil {
		h.sendError(c, "Failed to complete project", err)
		return
	}

	utils.SendSuccess(c, "Project completed successfully", project)
}

func (h *ProjectHandler) sendError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		utils.SendNotFound(c, "Project not found", err)
	case errors.Is(err, services.ErrNotProjectOwner):
		utils.SendError(c, http.StatusForbidden, message, err)
	case errors.Is(err, services.ErrInvalidProjectState):
		utils.SendError(c, http.StatusConflict, message, err)
	case errors.Is(err, services.ErrInvalidFilter), errors.Is(err, services.ErrInvalidFreelancer):
		utils.SendError(c, http.StatusBadRequest, message, err)
	default:
		utils.SendInternalError(c, message, err)
	}
}
