package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/api/middleware"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// SubmitReview handles POST /reviews. Resubmitting for the same project
// updates the earlier review and answers 200 instead of 201.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	review, created, err := h.reviewService.Submit(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			utils.SendNotFound(c, "Project not found", err)
		case errors.Is(err, services.ErrNotProjectParty):
			utils.SendError(c, http.StatusForbidden, "Failed to submit review", err)
		case errors.Is(err, services.ErrInvalidRating),
			errors.Is(err, services.ErrCommentTooShort),
			errors.Is(err, services.ErrInvalidReviewTarget),
			errors.Is(err, services.ErrSelfReview):
			utils.SendError(c, http.StatusBadRequest, "Failed to submit review", err)
		default:
			utils.SendInternalError(c, "Failed to submit review", err)
		}
		return
	}

	if created {
		utils.SendCreated(c, "Review submitted successfully", review)
		return
	}
	utils.SendSuccess(c, "Review updated successfully", review)
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reviews, err := h.reviewService.ListReceived(c.Request.Context(), userID, page, limit)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.SendNotFound(c, "User not found", err)
			return
		}
		utils.SendInternalError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) FlagReview(c *gin.Context) {
	reviewID, ok := uuidParam(c, "review_id", "review ID")
	if !ok {
		return
	}

	if err := h.reviewService.Flag(c.Request.Context(), reviewID); err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			utils.SendNotFound(c, "Review not found", err)
			return
		}
		utils.SendInternalError(c, "Failed to flag review", err)
		return
	}

	utils.SendSuccess(c, "Review flagged successfully", nil)
}

func (h *ReviewHandler) GetFlaggedReviews(c *gin.Context) {
	reviews, err := h.reviewService.FlaggedReviews(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch flagged reviews", err)
		return
	}

	utils.SendSuccess(c, "Flagged reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	reviewID, ok := uuidParam(c, "review_id", "review ID")
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	if err := h.reviewService.Moderate(c.Request.Context(), reviewID, req.Action); err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			utils.SendNotFound(c, "Review not found", err)
		case errors.Is(err, services.ErrInvalidModerationAction):
			utils.SendError(c, http.StatusBadRequest, "Failed to moderate review", err)
		default:
			utils.SendInternalError(c, "Failed to moderate review", err)
		}
		return
	}

	utils.SendSuccess(c, "Review moderated successfully", nil)
}
