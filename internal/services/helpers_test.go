package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/princeprakhar/freelance-backend/internal/database"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: testPassword,
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createUserAt(t *testing.T, db *gorm.DB, name string, role models.UserRole, createdAt time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Email:     fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password:  testPassword,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProject(t *testing.T, db *gorm.DB, client, freelancer *models.User, status models.ProjectStatus) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:    "Logo Design",
		ClientID: client.ID,
		Status:   status,
	}
	if freelancer != nil {
		id := freelancer.ID
		project.FreelancerID = &id
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func validReview(project *models.Project, target *models.User) SubmitReviewRequest {
	return SubmitReviewRequest{
		ProjectID:       project.ID,
		TargetUserID:    target.ID,
		OverallRating:   5,
		Quality:         5,
		Communication:   5,
		Timeliness:      5,
		Professionalism: 4,
		Comment:         "Great work, highly recommended professional.",
	}
}
