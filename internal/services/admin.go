package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"gorm.io/gorm"
)

var ErrInvalidCSV = errors.New("invalid CSV file")

type AdminService struct {
	db   *gorm.DB
	seed *SeedService
}

func NewAdminService(db *gorm.DB, seed *SeedService) *AdminService {
	return &AdminService{db: db, seed: seed}
}

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalClients      int64 `json:"total_clients"`
	TotalFreelancers  int64 `json:"total_freelancers"`
	TotalProjects     int64 `json:"total_projects"`
	CompletedProjects int64 `json:"completed_projects"`
	TotalReviews      int64 `json:"total_reviews"`
	FlaggedReviews    int64 `json:"flagged_reviews"`
	TotalSkills       int64 `json:"total_skills"`
}

type SkillImportResult struct {
	Message        string   `json:"message"`
	ProcessedCount int      `json:"processed_count"`
	FailedRows     []string `json:"failed_rows,omitempty"`
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{}).Where("is_active = ?", true)},
		{&stats.TotalClients, db.Model(&models.User{}).Where("is_active = ? AND role = ?", true, models.RoleClient)},
		{&stats.TotalFreelancers, db.Model(&models.User{}).Where("is_active = ? AND role = ?", true, models.RoleFreelancer)},
		{&stats.TotalProjects, db.Model(&models.Project{})},
		{&stats.CompletedProjects, db.Model(&models.Project{}).Where("status = ?", models.ProjectStatusCompleted)},
		{&stats.TotalReviews, db.Model(&models.Review{}).Where("is_active = ?", true)},
		{&stats.FlaggedReviews, db.Model(&models.Review{}).Where("is_flagged = ? AND is_active = ?", true, true)},
		{&stats.TotalSkills, db.Model(&models.Skill{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("%w: dashboard stats: %v", ErrDatabaseQuery, err)
		}
	}
	return stats, nil
}

// ImportSkillsCSV reads name,category,description rows (with a header) and
// upserts them into the catalog. Rows without a name are reported back.
func (s *AdminService) ImportSkillsCSV(ctx context.Context, src io.Reader) (*SkillImportResult, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: header and at least one data row required", ErrInvalidCSV)
	}

	var skills []models.Skill
	var failedRows []string
	for i, record := range records[1:] {
		row := i + 2
		if len(record) < 2 {
			failedRows = append(failedRows, fmt.Sprintf("Row %d: insufficient columns", row))
			continue
		}
		skill := models.Skill{
			Name:     strings.TrimSpace(record[0]),
			Category: strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			skill.Description = strings.TrimSpace(record[2])
		}
		if skill.Name == "" {
			failedRows = append(failedRows, fmt.Sprintf("Row %d: missing name", row))
			continue
		}
		skills = append(skills, skill)
	}

	processed, err := s.seed.UpsertSkills(ctx, skills)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("CSV processed successfully. %d skills upserted", processed)
	if len(failedRows) > 0 {
		message += fmt.Sprintf(". %d rows failed", len(failedRows))
	}
	return &SkillImportResult{
		Message:        message,
		ProcessedCount: processed,
		FailedRows:     failedRows,
	}, nil
}

// SetUserActive enables or disables an account. Disabling also revokes its
// refresh tokens.
func (s *AdminService) SetUserActive(ctx context.Context, userID string, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		if active {
			return nil
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("is_revoked", true).Error
	})
}
