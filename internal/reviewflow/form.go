package reviewflow

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinCommentLength is measured in characters after trimming.
const MinCommentLength = 20

// Validation errors double as the message shown to the user.
var (
	ErrOverallRatingRequired = errors.New("please select an overall rating")
	ErrCategoriesRequired    = errors.New("please rate all categories")
	ErrCommentTooShort       = fmt.Errorf("please write at least %d characters in your review", MinCommentLength)

	ErrUnknownField     = errors.New("unknown rating field")
	ErrRatingOutOfRange = fmt.Errorf("rating must be between 0 and %d", MaxRating)
)

// Field names a rating of the draft.
type Field string

const (
	FieldOverallRating   Field = "overall_rating"
	FieldQuality         Field = "quality"
	FieldCommunication   Field = "communication"
	FieldTimeliness      Field = "timeliness"
	FieldProfessionalism Field = "professionalism"
)

// CategoryFields lists the sub-ratings in display order.
var CategoryFields = []Field{FieldQuality, FieldCommunication, FieldTimeliness, FieldProfessionalism}

func (f Field) Label() string {
	switch f {
	case FieldOverallRating:
		return "Overall Rating"
	case FieldQuality:
		return "Quality of Work"
	case FieldCommunication:
		return "Communication"
	case FieldTimeliness:
		return "Timeliness"
	case FieldProfessionalism:
		return "Professionalism"
	}
	return string(f)
}

// Draft is an unsaved review. Ratings are 0 (unset) to MaxRating. Comment
// is kept exactly as typed.
type Draft struct {
	OverallRating   int
	Quality         int
	Communication   int
	Timeliness      int
	Professionalism int
	Comment         string
}

// Validate checks the overall rating, then the four categories, then the
// comment, and returns only the first failure.
func (d Draft) Validate() error {
	if d.OverallRating == 0 {
		return ErrOverallRatingRequired
	}
	if d.Quality == 0 || d.Communication == 0 || d.Timeliness == 0 || d.Professionalism == 0 {
		return ErrCategoriesRequired
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Comment)) < MinCommentLength {
		return ErrCommentTooShort
	}
	return nil
}

func (d Draft) Submittable() bool {
	return d.Validate() == nil
}

func (d Draft) Rating(field Field) int {
	switch field {
	case FieldOverallRating:
		return d.OverallRating
	case FieldQuality:
		return d.Quality
	case FieldCommunication:
		return d.Communication
	case FieldTimeliness:
		return d.Timeliness
	case FieldProfessionalism:
		return d.Professionalism
	}
	return 0
}

// Submission builds the payload for the review endpoint.
func (d Draft) Submission(projectID, targetUserID string) Submission {
	return Submission{
		ProjectID:       projectID,
		TargetUserID:    targetUserID,
		OverallRating:   d.OverallRating,
		Comment:         d.Comment,
		Quality:         d.Quality,
		Communication:   d.Communication,
		Timeliness:      d.Timeliness,
		Professionalism: d.Professionalism,
	}
}

// Form holds a draft together with the error message currently shown.
// Any edit clears the message.
type Form struct {
	draft   Draft
	message string
}

func (f *Form) SetRating(field Field, value int) error {
	if value < 0 || value > MaxRating {
		return ErrRatingOutOfRange
	}
	switch field {
	case FieldOverallRating:
		f.draft.OverallRating = value
	case FieldQuality:
		f.draft.Quality = value
	case FieldCommunication:
		f.draft.Communication = value
	case FieldTimeliness:
		f.draft.Timeliness = value
	case FieldProfessionalism:
		f.draft.Professionalism = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.message = ""
	return nil
}

func (f *Form) SetComment(text string) {
	f.draft.Comment = text
	f.message = ""
}

func (f *Form) Validate() error {
	return f.draft.Validate()
}

func (f *Form) Reset() {
	f.draft = Draft{}
	f.message = ""
}

func (f *Form) Draft() Draft {
	return f.draft
}

func (f *Form) ErrorMessage() string {
	return f.message
}

func (f *Form) fail(message string) {
	f.message = message
}
