package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	QueryTimeout    = 30 * time.Second
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrInvalidFilter       = errors.New("invalid filter parameters")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrNotProjectOwner     = errors.New("only the project's client can do this")
	ErrInvalidFreelancer   = errors.New("freelancer not found")
	ErrInvalidProjectState = errors.New("project is not in a valid state for this action")
)

type ProjectService struct {
	db         *gorm.DB
	reputation *ReputationService
}

func NewProjectService(db *gorm.DB, reputation *ReputationService) *ProjectService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &ProjectService{db: db, reputation: reputation}
}

type ProjectFilter struct {
	Status       string `form:"status"`
	ClientID     string `form:"client_id"`
	FreelancerID string `form:"freelancer_id"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type ProjectResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
}

type AssignProjectRequest struct {
	FreelancerID string `json:"freelancer_id" binding:"required"`
}

func (f *ProjectFilter) ValidateAndNormalize() error {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	f.Status = strings.TrimSpace(f.Status)
	switch models.ProjectStatus(f.Status) {
	case "", models.ProjectStatusOpen, models.ProjectStatusInProgress, models.ProjectStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	return nil
}

// Create opens a project owned by clientID. Naming a freelancer up front
// starts it in progress.
func (s *ProjectService) Create(ctx context.Context, clientID string, req models.CreateProjectRequest) (*models.Project, error) {
	db := s.db.WithContext(ctx)

	project := models.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Budget:      req.Budget,
		ClientID:    clientID,
		Status:      models.ProjectStatusOpen,
	}

	if req.FreelancerID != nil && *req.FreelancerID != "" {
		if err := s.checkFreelancer(db, *req.FreelancerID); err != nil {
			return nil, err
		}
		freelancerID := *req.FreelancerID
		project.FreelancerID = &freelancerID
		project.Status = models.ProjectStatusInProgress
	}

	if err := db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.GetByID(ctx, project.ID)
}

func (s *ProjectService) List(ctx context.Context, filter ProjectFilter) (*ProjectResponse, error) {
	if err := filter.ValidateAndNormalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	query := s.db.WithContext(ctx).Model(&models.Project{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.FreelancerID != "" {
		query = query.Where("freelancer_id = ?", filter.FreelancerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count projects: %v", ErrDatabaseQuery, err)
	}

	resp := &ProjectResponse{
		Projects: []models.Project{},
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if total == 0 {
		return resp, nil
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Client").
		Preload("Freelancer").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&resp.Projects).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch projects: %v", ErrDatabaseQuery, err)
	}

	resp.Pages = int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		resp.Pages++
	}
	return resp, nil
}

// GetByID returns the project with both parties loaded.
func (s *ProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Freelancer").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch project: %v", ErrDatabaseQuery, err)
	}
	return &project, nil
}

// Assign hands an open project to a freelancer.
func (s *ProjectService) Assign(ctx context.Context, projectID, callerID, freelancerID string) (*models.Project, error) {
	db := s.db.WithContext(ctx)

	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != callerID {
		return nil, ErrNotProjectOwner
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrInvalidProjectState
	}
	if err := s.checkFreelancer(db, freelancerID); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Project{}).Where("id = ?", projectID).Updates(map[string]interface{}{
		"freelancer_id": freelancerID,
		"status":        models.ProjectStatusInProgress,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to assign project: %w", err)
	}
	return s.GetByID(ctx, projectID)
}

// Complete closes an in-progress project and refreshes both parties'
// reputation.
func (s *ProjectService) Complete(ctx context.Context, projectID, callerID string) (*models.Project, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != callerID {
		return nil, ErrNotProjectOwner
	}
	if project.Status != models.ProjectStatusInProgress || project.FreelancerID == nil {
		return nil, ErrInvalidProjectState
	}

	if err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("status", models.ProjectStatusCompleted).Error; err != nil {
		return nil, fmt.Errorf("failed to complete project: %w", err)
	}

	if s.reputation != nil {
		for _, id := range []string{project.ClientID, *project.FreelancerID} {
			if _, err := s.reputation.Recompute(ctx, id); err != nil {
				logger.WithFields(logrus.Fields{"user_id": id, "project_id": projectID, "error": err.Error()}).
					Error("reputation recompute failed")
			}
		}
	}
	return s.GetByID(ctx, projectID)
}

func (s *ProjectService) checkFreelancer(db *gorm.DB, freelancerID string) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("id = ? AND role = ? AND is_active = ?", freelancerID, models.RoleFreelancer, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidFreelancer
	}
	return nil
}
