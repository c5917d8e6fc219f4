package reviewflow

import "fmt"

// SuccessMessage is shown while the modal waits to auto-close.
const SuccessMessage = "Review submitted successfully!"

// RatingView is one labelled star row of the modal.
type RatingView struct {
	Field Field
	Label string
	Input RatingInput
}

// View is everything the modal draws for its current state.
type View struct {
	Heading        string
	ProjectTitle   string
	Target         Party
	Status         Status
	Overall        RatingView
	Categories     []RatingView
	Comment        string
	ErrorMessage   string
	SuccessMessage string
	SubmitDisabled bool
	CancelDisabled bool
}

// View returns what to render, or nil when the modal is closed, disposed
// or has nobody to review.
func (m *Modal) View() *View {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.Target()
	if !ok || m.disposed || m.status == StatusClosed {
		return nil
	}

	draft := m.form.Draft()
	readonly := m.status == StatusSubmitting || m.status == StatusSuccess

	view := &View{
		Heading:        fmt.Sprintf("Review %s", target.Name),
		ProjectTitle:   m.project.Title,
		Target:         target,
		Status:         m.status,
		Overall:        m.ratingView(FieldOverallRating, draft, SizeLarge, readonly),
		Comment:        draft.Comment,
		ErrorMessage:   m.form.ErrorMessage(),
		SubmitDisabled: m.status != StatusIdle && m.status != StatusError,
		CancelDisabled: m.status == StatusSubmitting,
	}
	for _, field := range CategoryFields {
		view.Categories = append(view.Categories, m.ratingView(field, draft, SizeSmall, readonly))
	}
	if m.status == StatusSuccess {
		view.SuccessMessage = SuccessMessage
	}
	return view
}

func (m *Modal) ratingView(field Field, draft Draft, size Size, readonly bool) RatingView {
	input := RatingInput{
		Value:    draft.Rating(field),
		Size:     size,
		Readonly: readonly,
	}
	if !readonly {
		input.OnChange = func(value int) {
			_ = m.SetRating(field, value)
		}
	}
	return RatingView{Field: field, Label: field.Label(), Input: input}
}
