package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/princeprakhar/freelance-backend/internal/metrics"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReputationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReputationService(db *gorm.DB) *ReputationService {
	return &ReputationService{db: db, now: time.Now}
}

// Score maps an average rating on the 1..5 scale onto 0..100.
func Score(averageRating float64) int {
	return int(math.Round(averageRating * 20))
}

// Recompute rebuilds a user's reputation from their active reviews and
// completed projects and stores it.
func (s *ReputationService) Recompute(ctx context.Context, userID string) (*models.Reputation, error) {
	db := s.db.WithContext(ctx)

	var avg sql.NullFloat64
	if err := db.Model(&models.Review{}).
		Select("AVG(overall_rating)").
		Where("target_user_id = ? AND is_active = ?", userID, true).
		Row().Scan(&avg); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	var completed int64
	if err := db.Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusCompleted).
		Where("client_id = ? OR freelancer_id = ?", userID, userID).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("completed projects: %w", err)
	}

	average := 0.0
	if avg.Valid {
		average = avg.Float64
	}

	rep := models.Reputation{
		UserID:                userID,
		Score:                 Score(average),
		CompletedProjectCount: int(completed),
		AverageRating:         math.Round(average*100) / 100,
		LastUpdated:           s.now(),
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "completed_project_count", "average_rating", "last_updated"}),
	}).Create(&rep).Error
	if err != nil {
		return nil, fmt.Errorf("store reputation: %w", err)
	}
	metrics.RecordReputationRecompute()
	return &rep, nil
}

// RecomputeAll refreshes every active user and returns how many were
// updated. It stops early when ctx is cancelled.
func (s *ReputationService) RecomputeAll(ctx context.Context) (int, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ?", true).
		Order("created_at").
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			logger.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("reputation recompute failed")
			continue
		}
		updated++
	}
	return updated, nil
}

// ReputationScheduler runs RecomputeAll on a cron schedule.
type ReputationScheduler struct {
	cron    *cron.Cron
	service *ReputationService
}

func NewReputationScheduler(service *ReputationService, schedule string) (*ReputationScheduler, error) {
	s := &ReputationScheduler{cron: cron.New(), service: service}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid reputation schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ReputationScheduler) Start() {
	s.cron.Start()
	logger.Info("[REPUTATION-SCHEDULER] started")
}

// Stop halts the schedule and returns a context that is done once a
// running recompute has finished.
func (s *ReputationScheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *ReputationScheduler) run() {
	start := time.Now()
	updated, err := s.service.RecomputeAll(context.Background())
	fields := logrus.Fields{"updated": updated, "duration": time.Since(start).String()}
	if err != nil {
		fields["error"] = err.Error()
		logger.WithFields(fields).Error("[REPUTATION-SCHEDULER] recompute aborted")
		return
	}
	logger.WithFields(fields).Info("[REPUTATION-SCHEDULER] recompute finished")
}
