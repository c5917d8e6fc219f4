package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/princeprakhar/freelance-backend/internal/metrics"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/reviewflow"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound          = errors.New("review not found")
	ErrInvalidRating           = errors.New("ratings must be between 1 and 5")
	ErrCommentTooShort         = fmt.Errorf("comment must be at least %d characters", reviewflow.MinCommentLength)
	ErrNotProjectParty         = errors.New("only the project's client or freelancer can review it")
	ErrInvalidReviewTarget     = errors.New("review target must be the other party of the project")
	ErrSelfReview              = errors.New("you cannot review yourself")
	ErrInvalidModerationAction = errors.New("invalid action, use 'approve' or 'remove'")
)

// ReviewNotifier tells a user they received a review.
type ReviewNotifier interface {
	SendReviewNotification(n ReviewNotification) error
}

type ReviewService struct {
	db         *gorm.DB
	reputation *ReputationService
	notifier   ReviewNotifier
	baseURL    string

	wg sync.WaitGroup
}

// NewReviewService builds the service. notifier may be nil, in which case
// no emails are sent.
func NewReviewService(db *gorm.DB, reputation *ReputationService, notifier ReviewNotifier, baseURL string) *ReviewService {
	return &ReviewService{
		db:         db,
		reputation: reputation,
		notifier:   notifier,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type SubmitReviewRequest struct {
	ProjectID       string `json:"project_id" binding:"required,uuid"`
	TargetUserID    string `json:"target_user_id" binding:"required,uuid"`
	OverallRating   int    `json:"overall_rating"`
	Comment         string `json:"comment"`
	Quality         int    `json:"quality"`
	Communication   int    `json:"communication"`
	Timeliness      int    `json:"timeliness"`
	Professionalism int    `json:"professionalism"`
}

type ReviewResponse struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	ProjectTitle    string    `json:"project_title"`
	ReviewerID      string    `json:"reviewer_id"`
	ReviewerName    string    `json:"reviewer_name"`
	OverallRating   int       `json:"overall_rating"`
	Quality         int       `json:"quality"`
	Communication   int       `json:"communication"`
	Timeliness      int       `json:"timeliness"`
	Professionalism int       `json:"professionalism"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"created_at"`
}

type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Pages   int              `json:"pages"`
}

func (r SubmitReviewRequest) validate() error {
	for _, rating := range []int{r.OverallRating, r.Quality, r.Communication, r.Timeliness, r.Professionalism} {
		if !utils.IsValidRating(rating) {
			return ErrInvalidRating
		}
	}
	if utils.TrimmedLength(r.Comment) < reviewflow.MinCommentLength {
		return ErrCommentTooShort
	}
	return nil
}

// Submit stores the reviewer's review of the other party of a project. A
// second submission for the same project replaces the first. The returned
// flag reports whether a new review was created.
func (s *ReviewService) Submit(ctx context.Context, reviewerID string, req SubmitReviewRequest) (*models.Review, bool, error) {
	review, created, err := s.submit(ctx, reviewerID, req)
	switch {
	case err == nil && created:
		metrics.RecordReviewSubmission(metrics.ReviewCreated)
	case err == nil:
		metrics.RecordReviewSubmission(metrics.ReviewUpdated)
	case isReviewRejection(err):
		metrics.RecordReviewSubmission(metrics.ReviewRejected)
	default:
		metrics.RecordReviewSubmission(metrics.ReviewFailed)
	}
	return review, created, err
}

func (s *ReviewService) submit(ctx context.Context, reviewerID string, req SubmitReviewRequest) (*models.Review, bool, error) {
	if err := req.validate(); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)

	var project models.Project
	if err := db.Preload("Client").Preload("Freelancer").Where("id = ?", req.ProjectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrProjectNotFound
		}
		return nil, false, err
	}

	target, err := resolveReviewTarget(&project, reviewerID)
	if err != nil {
		return nil, false, err
	}
	if target.ID != req.TargetUserID {
		return nil, false, ErrInvalidReviewTarget
	}
	if target.ID == reviewerID {
		return nil, false, ErrSelfReview
	}

	var review models.Review
	created := false
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project_id = ? AND reviewer_id = ?", project.ID, reviewerID).First(&review).Error
		switch {
		case err == nil:
			return tx.Model(&review).Updates(map[string]interface{}{
				"target_user_id":  target.ID,
				"overall_rating":  req.OverallRating,
				"quality":         req.Quality,
				"communication":   req.Communication,
				"timeliness":      req.Timeliness,
				"professionalism": req.Professionalism,
				"comment":         req.Comment,
				"is_active":       true,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				ProjectID:       project.ID,
				ReviewerID:      reviewerID,
				TargetUserID:    target.ID,
				OverallRating:   req.OverallRating,
				Quality:         req.Quality,
				Communication:   req.Communication,
				Timeliness:      req.Timeliness,
				Professionalism: req.Professionalism,
				Comment:         req.Comment,
				IsActive:        true,
			}
			created = true
			return tx.Create(&review).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to save review: %w", err)
	}

	if err := db.Preload("Reviewer").Preload("Target").Preload("Project").First(&review, "id = ?", review.ID).Error; err != nil {
		return nil, false, err
	}

	s.refreshReputation(ctx, target.ID)
	s.notify(review)

	logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"project_id": project.ID,
		"created":    created,
	}).Info("review saved")

	return &review, created, nil
}

// resolveReviewTarget applies the same role rule as the review modal: a
// client reviews the freelancer and a freelancer reviews the client.
func resolveReviewTarget(project *models.Project, reviewerID string) (reviewflow.Party, error) {
	var role reviewflow.Role
	switch {
	case project.ClientID == reviewerID:
		role = reviewflow.RoleClient
	case project.FreelancerID != nil && *project.FreelancerID == reviewerID:
		role = reviewflow.RoleFreelancer
	default:
		return reviewflow.Party{}, ErrNotProjectParty
	}

	target, ok := reviewflow.ResolveTarget(ToReviewflowProject(project), role)
	if !ok {
		return reviewflow.Party{}, ErrInvalidReviewTarget
	}
	return target, nil
}

// ToReviewflowProject converts a stored project, with its parties loaded,
// into what the review modal works on.
func ToReviewflowProject(project *models.Project) reviewflow.Project {
	out := reviewflow.Project{ID: project.ID, Title: project.Title}
	if project.ClientID != "" {
		out.Client = &reviewflow.Party{ID: project.ClientID}
		if project.Client != nil {
			out.Client.Name = project.Client.Name
		}
	}
	if project.FreelancerID != nil && *project.FreelancerID != "" {
		out.Freelancer = &reviewflow.Party{ID: *project.FreelancerID}
		if project.Freelancer != nil {
			out.Freelancer.Name = project.Freelancer.Name
		}
	}
	return out
}

// ListReceived pages through the active reviews a user received, newest
// first.
func (s *ReviewService) ListReceived(ctx context.Context, userID string, page, limit int) (*ReviewListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	db := s.db.WithContext(ctx)

	var users int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
		return nil, err
	}
	if users == 0 {
		return nil, ErrUserNotFound
	}

	query := db.Model(&models.Review{}).Where("target_user_id = ? AND is_active = ?", userID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count reviews: %v", ErrDatabaseQuery, err)
	}

	var reviews []models.Review
	if err := query.
		Preload("Reviewer").
		Preload("Project").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch reviews: %v", ErrDatabaseQuery, err)
	}

	resp := &ReviewListResponse{
		Reviews: make([]ReviewResponse, 0, len(reviews)),
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, r := range reviews {
		item := ReviewResponse{
			ID:              r.ID,
			ProjectID:       r.ProjectID,
			ReviewerID:      r.ReviewerID,
			ReviewerName:    "Anonymous",
			OverallRating:   r.OverallRating,
			Quality:         r.Quality,
			Communication:   r.Communication,
			Timeliness:      r.Timeliness,
			Professionalism: r.Professionalism,
			Comment:         r.Comment,
			CreatedAt:       r.CreatedAt,
		}
		if r.Reviewer != nil {
			item.ReviewerName = r.Reviewer.Name
		}
		if r.Project != nil {
			item.ProjectTitle = r.Project.Title
		}
		resp.Reviews = append(resp.Reviews, item)
	}
	return resp, nil
}

func (s *ReviewService) Flag(ctx context.Context, reviewID string) error {
	res := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND is_active = ?", reviewID, true).
		Update("is_flagged", true)
	if res.Error != nil {
		return fmt.Errorf("failed to flag review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *ReviewService) FlaggedReviews(ctx context.Context) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Preload("Reviewer").
		Preload("Target").
		Preload("Project").
		Where("is_flagged = ? AND is_active = ?", true, true).
		Order("updated_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flagged reviews: %w", err)
	}
	return reviews, nil
}

// Moderate resolves a flag: approve clears it, remove hides the review and
// drops it from the target's reputation.
func (s *ReviewService) Moderate(ctx context.Context, reviewID, action string) error {
	db := s.db.WithContext(ctx)

	var review models.Review
	if err := db.Where("id = ?", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	switch action {
	case "approve":
		return db.Model(&review).Update("is_flagged", false).Error
	case "remove":
		if err := db.Model(&review).Updates(map[string]interface{}{"is_active": false, "is_flagged": false}).Error; err != nil {
			return fmt.Errorf("failed to remove review: %w", err)
		}
		s.refreshReputation(ctx, review.TargetUserID)
		return nil
	default:
		return ErrInvalidModerationAction
	}
}

// Wait blocks until pending notifications have been sent.
func (s *ReviewService) Wait() {
	s.wg.Wait()
}

func (s *ReviewService) refreshReputation(ctx context.Context, userID string) {
	if s.reputation == nil {
		return
	}
	if _, err := s.reputation.Recompute(ctx, userID); err != nil {
		logger.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("reputation recompute failed")
	}
}

func (s *ReviewService) notify(review models.Review) {
	if s.notifier == nil || review.Target == nil || review.Target.Email == "" {
		return
	}

	n := ReviewNotification{
		RecipientEmail: review.Target.Email,
		RecipientName:  review.Target.Name,
		OverallRating:  review.OverallRating,
		Comment:        review.Comment,
		ReviewsURL:     fmt.Sprintf("%s/api/v1/reviews/user/%s", s.baseURL, review.TargetUserID),
	}
	if review.Reviewer != nil {
		n.ReviewerName = review.Reviewer.Name
	}
	if review.Project != nil {
		n.ProjectTitle = review.Project.Title
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.notifier.SendReviewNotification(n)
		metrics.RecordReviewNotification(err == nil)
		if err != nil {
			logger.WithFields(logrus.Fields{"review_id": review.ID, "error": err.Error()}).Warn("review notification failed")
		}
	}()
}

func isReviewRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidRating, ErrCommentTooShort, ErrProjectNotFound,
		ErrNotProjectParty, ErrInvalidReviewTarget, ErrSelfReview,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
