package reviewflow

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ErrSubmission is the only error a Submitter reports to the user,
// whatever went wrong on the way.
var ErrSubmission = errors.New("failed to submit review, please try again")

// ReviewsPath is the review endpoint relative to the API base URL.
const ReviewsPath = "/api/v1/reviews"

const DefaultSubmitTimeout = 15 * time.Second

// Submission is the immutable payload sent once per successful submit.
type Submission struct {
	ProjectID       string `json:"project_id"`
	TargetUserID    string `json:"target_user_id"`
	OverallRating   int    `json:"overall_rating"`
	Comment         string `json:"comment"`
	Quality         int    `json:"quality"`
	Communication   int    `json:"communication"`
	Timeliness      int    `json:"timeliness"`
	Professionalism int    `json:"professionalism"`
}

// Submitter sends a review. Implementations must not retry.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) error
}

// HTTPSubmitter posts reviews to the marketplace API.
type HTTPSubmitter struct {
	client *resty.Client
}

func NewHTTPSubmitter(baseURL, accessToken string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	return &HTTPSubmitter{client: client}
}

// Submit sends exactly one request. Transport failures and non-2xx
// responses both come back as ErrSubmission; the cause is only logged.
func (s *HTTPSubmitter) Submit(ctx context.Context, submission Submission) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(submission).
		Post(ReviewsPath)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"project_id": submission.ProjectID,
			"error":      err.Error(),
		}).Warn("review submission failed")
		return ErrSubmission
	}

	if !resp.IsSuccess() {
		logger.WithFields(logrus.Fields{
			"project_id": submission.ProjectID,
			"status":     resp.StatusCode(),
			"message":    gjson.GetBytes(resp.Body(), "message").String(),
			"cause":      gjson.GetBytes(resp.Body(), "error").String(),
		}).Warn("review submission rejected")
		return ErrSubmission
	}

	return nil
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, submission Submission) error

func (f SubmitterFunc) Submit(ctx context.Context, submission Submission) error {
	return f(ctx, submission)
}
