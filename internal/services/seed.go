package services

import (
	"context"
	"fmt"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSkills is the catalog every environment starts with.
var DefaultSkills = []models.Skill{
	{Name: "Go", Category: "Development", Description: "Backend services and tooling in Go"},
	{Name: "React", Category: "Development", Description: "Single-page web applications"},
	{Name: "PostgreSQL", Category: "Development", Description: "Relational schema design and tuning"},
	{Name: "Mobile Development", Category: "Development", Description: "Native and cross-platform mobile apps"},
	{Name: "Logo Design", Category: "Design", Description: "Brand marks and visual identity"},
	{Name: "UI/UX Design", Category: "Design", Description: "Interface design, wireframes and prototypes"},
	{Name: "Copywriting", Category: "Writing", Description: "Marketing and product copy"},
	{Name: "Technical Writing", Category: "Writing", Description: "Documentation, guides and API references"},
	{Name: "SEO", Category: "Marketing", Description: "Search engine optimisation"},
	{Name: "Video Editing", Category: "Media", Description: "Cutting, grading and motion graphics"},
}

type sampleAccount struct {
	Email string
	Name  string
	Role  models.UserRole
}

var sampleAccounts = []sampleAccount{
	{Email: "client@example.com", Name: "Alice Client", Role: models.RoleClient},
	{Email: "freelancer@example.com", Name: "Bob Freelancer", Role: models.RoleFreelancer},
}

type SeedResult struct {
	Skills int `json:"skills"`
	Users  int `json:"users"`
}

type SeedService struct {
	db       *gorm.DB
	password string
}

// NewSeedService takes the password given to newly created sample
// accounts. Existing accounts keep theirs.
func NewSeedService(db *gorm.DB, password string) *SeedService {
	return &SeedService{db: db, password: password}
}

// Run upserts the skill catalog and the sample accounts. Running it again
// leaves the same rows behind.
func (s *SeedService) Run(ctx context.Context) (*SeedResult, error) {
	skills, err := s.UpsertSkills(ctx, DefaultSkills)
	if err != nil {
		return nil, err
	}

	users := 0
	for _, account := range sampleAccounts {
		user := models.User{
			Email:    account.Email,
			Password: s.password,
			Name:     account.Name,
			Role:     account.Role,
			IsActive: true,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", account.Email, err)
		}
		users++
	}

	logger.WithFields(logrus.Fields{"skills": skills, "users": users}).Info("seed complete")
	return &SeedResult{Skills: skills, Users: users}, nil
}

// UpsertSkills inserts skills by name, refreshing category and description
// of the ones that already exist.
func (s *SeedService) UpsertSkills(ctx context.Context, skills []models.Skill) (int, error) {
	// One row per name; the last occurrence wins.
	index := make(map[string]int, len(skills))
	rows := make([]models.Skill, 0, len(skills))
	for _, skill := range skills {
		if i, ok := index[skill.Name]; ok {
			rows[i] = skill
			continue
		}
		index[skill.Name] = len(rows)
		rows = append(rows, skill)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "description", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("seed skills: %w", err)
	}
	return len(rows), nil
}
