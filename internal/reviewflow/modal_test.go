package reviewflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasPending := !t.stopped
	t.stopped = true
	return wasPending
}

// fakeScheduler records scheduled calls; tests fire them by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, timer)
	return timer
}

func (s *fakeScheduler) last(t *testing.T) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.timers, "nothing scheduled")
	return s.timers[len(s.timers)-1]
}

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []Submission
	err   error
}

func (r *recordingSubmitter) Submit(_ context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
	return r.err
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// blockingSubmitter holds every call until release is closed.
type blockingSubmitter struct {
	recordingSubmitter
	started chan struct{}
	release chan struct{}
}

func newBlockingSubmitter() *blockingSubmitter {
	return &blockingSubmitter{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (b *blockingSubmitter) Submit(ctx context.Context, s Submission) error {
	err := b.recordingSubmitter.Submit(ctx, s)
	b.started <- struct{}{}
	<-b.release
	return err
}

func fillDraft(t *testing.T, m *Modal) {
	t.Helper()
	require.NoError(t, m.SetRating(FieldOverallRating, 5))
	require.NoError(t, m.SetRating(FieldQuality, 5))
	require.NoError(t, m.SetRating(FieldCommunication, 5))
	require.NoError(t, m.SetRating(FieldTimeliness, 5))
	require.NoError(t, m.SetRating(FieldProfessionalism, 4))
	require.NoError(t, m.SetComment(goodComment))
}

func TestModalOpenStartsIdleWithEmptyDraft(t *testing.T) {
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{}, WithScheduler(&fakeScheduler{}))
	assert.Equal(t, StatusClosed, m.Status())
	assert.Nil(t, m.View())

	m.Open()
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, Draft{}, m.Draft())

	view := m.View()
	require.NotNil(t, view)
	assert.Equal(t, "Review Bob", view.Heading)
	assert.Equal(t, "Logo Design", view.ProjectTitle)
	assert.Len(t, view.Categories, 4)
	assert.False(t, view.SubmitDisabled)
}

func TestModalResolvesTargetByRole(t *testing.T) {
	sub := &recordingSubmitter{}
	for role, want := range map[Role]string{RoleClient: "f1", RoleFreelancer: "c1"} {
		m := NewModal(logoProject(), role, sub, WithScheduler(&fakeScheduler{}))
		m.Open()
		fillDraft(t, m)
		require.NoError(t, m.Submit(context.Background()))
		assert.Equal(t, want, sub.calls[len(sub.calls)-1].TargetUserID)
	}

	m := NewModal(logoProject(), RoleFreelancer, sub)
	m.Open()
	assert.Equal(t, "Review Alice", m.View().Heading)
}

func TestModalWithoutTargetRendersNothing(t *testing.T) {
	project := logoProject()
	project.Freelancer = nil
	sub := &recordingSubmitter{}
	m := NewModal(project, RoleClient, sub, WithScheduler(&fakeScheduler{}))

	m.Open()
	assert.Nil(t, m.View())

	fillDraft(t, m)
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNoTarget)
	assert.Zero(t, sub.count())
}

func TestModalValidationFailureSendsNothing(t *testing.T) {
	sub := &recordingSubmitter{}
	m := NewModal(logoProject(), RoleClient, sub, WithScheduler(&fakeScheduler{}))
	m.Open()

	err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrOverallRatingRequired)
	assert.Equal(t, StatusError, m.Status())
	assert.Equal(t, ErrOverallRatingRequired.Error(), m.ErrorMessage())
	assert.Zero(t, sub.count())

	require.NoError(t, m.SetRating(FieldOverallRating, 3))
	assert.Equal(t, StatusIdle, m.Status())
	assert.Empty(t, m.ErrorMessage())

	assert.ErrorIs(t, m.Submit(context.Background()), ErrCategoriesRequired)
	assert.Zero(t, sub.count())
}

func TestModalSubmitFailureIsGenericAndRetryable(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("401 unauthorized")}
	m := NewModal(logoProject(), RoleClient, sub, WithScheduler(&fakeScheduler{}))
	m.Open()
	fillDraft(t, m)

	err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Equal(t, StatusError, m.Status())
	assert.Equal(t, ErrSubmission.Error(), m.ErrorMessage())
	assert.Equal(t, 1, sub.count())

	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()

	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, StatusSuccess, m.Status())
	require.Equal(t, 2, sub.count())
	assert.Equal(t, sub.calls[0], sub.calls[1])
}

func TestModalSuccessAutoClosesAfterDelay(t *testing.T) {
	sched := &fakeScheduler{}
	closed := 0
	sub := &recordingSubmitter{}
	m := NewModal(logoProject(), RoleClient, sub, WithScheduler(sched), WithOnClose(func() { closed++ }))
	m.Open()
	fillDraft(t, m)

	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, StatusSuccess, m.Status())
	assert.Equal(t, SuccessMessage, m.View().SuccessMessage)
	assert.True(t, m.View().SubmitDisabled)

	timer := sched.last(t)
	assert.Equal(t, 2000*time.Millisecond, timer.delay)
	// Nothing happens until the timer fires.
	assert.Equal(t, StatusSuccess, m.Status())
	assert.Equal(t, goodComment, m.Draft().Comment)

	timer.fn()
	assert.Equal(t, StatusClosed, m.Status())
	assert.Equal(t, Draft{}, m.Draft())
	assert.Equal(t, 1, closed)
	assert.Nil(t, m.View())
}

func TestModalSecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	sub := newBlockingSubmitter()
	m := NewModal(logoProject(), RoleClient, sub, WithScheduler(&fakeScheduler{}))
	m.Open()
	fillDraft(t, m)

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-sub.started

	assert.Equal(t, StatusSubmitting, m.Status())
	assert.True(t, m.View().SubmitDisabled)
	assert.True(t, m.View().CancelDisabled)
	assert.ErrorIs(t, m.Submit(context.Background()), ErrSubmitDisabled)
	assert.ErrorIs(t, m.SetComment("changed my mind about this one"), ErrNotEditable)

	assert.False(t, m.Cancel())
	assert.Equal(t, StatusSubmitting, m.Status())

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.count())
	assert.Equal(t, StatusSuccess, m.Status())
}

func TestModalCancelClosesAndResets(t *testing.T) {
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{}, WithScheduler(&fakeScheduler{}))
	m.Open()
	require.NoError(t, m.SetRating(FieldOverallRating, 2))

	assert.True(t, m.Cancel())
	assert.Equal(t, StatusClosed, m.Status())
	assert.Equal(t, Draft{}, m.Draft())

	m.Open()
	_ = m.Submit(context.Background())
	require.Equal(t, StatusError, m.Status())
	assert.True(t, m.Cancel())
	assert.Equal(t, StatusClosed, m.Status())
	assert.Empty(t, m.ErrorMessage())

	assert.False(t, m.Cancel(), "already closed")
}

func TestModalCancelDuringSuccessStopsTimer(t *testing.T) {
	sched := &fakeScheduler{}
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{}, WithScheduler(sched))
	m.Open()
	fillDraft(t, m)
	require.NoError(t, m.Submit(context.Background()))

	timer := sched.last(t)
	assert.True(t, m.Cancel())
	assert.True(t, timer.stopped)

	// A stale fire after reopening must not close the new session.
	m.Open()
	timer.fn()
	assert.Equal(t, StatusIdle, m.Status())
}

func TestModalDisposeCancelsPendingClose(t *testing.T) {
	sched := &fakeScheduler{}
	closed := false
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{}, WithScheduler(sched), WithOnClose(func() { closed = true }))
	m.Open()
	fillDraft(t, m)
	require.NoError(t, m.Submit(context.Background()))

	timer := sched.last(t)
	m.Dispose()
	assert.True(t, timer.stopped)

	timer.fn()
	assert.False(t, closed)
	assert.Nil(t, m.View())

	m.Open()
	assert.Equal(t, StatusClosed, m.Status())
}

func TestModalDisposeDuringSubmitDropsResult(t *testing.T) {
	sched := &fakeScheduler{}
	sub := newBlockingSubmitter()
	m := NewModal(logoProject(), RoleClient, sub, WithScheduler(sched))
	m.Open()
	fillDraft(t, m)

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-sub.started

	m.Dispose()
	close(sub.release)
	require.NoError(t, <-done)

	assert.Equal(t, StatusClosed, m.Status())
	sched.mu.Lock()
	defer sched.mu.Unlock()
	assert.Empty(t, sched.timers)
}

func TestModalViewRatingInputsDriveTheDraft(t *testing.T) {
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{}, WithScheduler(&fakeScheduler{}))
	m.Open()

	view := m.View()
	require.True(t, view.Overall.Input.Select(4))
	require.True(t, view.Categories[1].Input.Select(2))

	draft := m.Draft()
	assert.Equal(t, 4, draft.OverallRating)
	assert.Equal(t, 2, draft.Communication)

	view = m.View()
	assert.Equal(t, 4, view.Overall.Input.Value)
	assert.Equal(t, "Communication", view.Categories[1].Label)
}

func TestModalRealTimerClosesOnItsOwn(t *testing.T) {
	closed := make(chan struct{})
	m := NewModal(logoProject(), RoleClient, &recordingSubmitter{},
		WithAutoCloseDelay(10*time.Millisecond),
		WithOnClose(func() { close(closed) }))
	m.Open()
	fillDraft(t, m)
	require.NoError(t, m.Submit(context.Background()))

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("modal did not auto-close")
	}
	assert.Equal(t, StatusClosed, m.Status())
}
