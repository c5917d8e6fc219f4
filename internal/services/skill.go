package services

import (
	"context"
	"errors"
	"strings"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"gorm.io/gorm"
)

type SkillService struct {
	db *gorm.DB
}

func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{db: db}
}

// List returns the catalog ordered by name, optionally for one category
// (case-insensitive).
func (s *SkillService) List(ctx context.Context, category string) ([]models.Skill, error) {
	query := s.db.WithContext(ctx).Model(&models.Skill{})
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}

	skills := []models.Skill{}
	if err := query.Order("name").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// Categories lists the distinct categories in use.
func (s *SkillService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&models.Skill{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// SetUserSkills replaces a user's skill list with the given skill IDs.
// Unknown IDs are ignored.
func (s *SkillService) SetUserSkills(ctx context.Context, userID string, skillIDs []uint) ([]models.Skill, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	skills := []models.Skill{}
	if len(skillIDs) > 0 {
		if err := db.Where("id IN ?", skillIDs).Order("name").Find(&skills).Error; err != nil {
			return nil, err
		}
	}
	assoc := db.Model(&user).Association("Skills")
	var err error
	if len(skills) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(skills)
	}
	if err != nil {
		return nil, err
	}
	return skills, nil
}
