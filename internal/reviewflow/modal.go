package reviewflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// AutoCloseDelay is how long the success message stays up.
const AutoCloseDelay = 2000 * time.Millisecond

var (
	// ErrSubmitDisabled is returned when submit is triggered while the
	// button is disabled (closed, already submitting or succeeded).
	ErrSubmitDisabled = errors.New("review submit is disabled")
	ErrNotEditable    = errors.New("review form is not editable")
	// ErrNoTarget means there is nobody to review; the modal renders
	// nothing in that case.
	ErrNoTarget = errors.New("review target is not available")
)

// Status is the single tagged state of a modal. Idle, Submitting, Error
// and Success are the open states.
type Status int

const (
	StatusClosed Status = iota
	StatusIdle
	StatusSubmitting
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "closed"
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) IsOpen() bool {
	return s != StatusClosed
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Modal)

func WithScheduler(scheduler Scheduler) Option {
	return func(m *Modal) {
		m.scheduler = scheduler
	}
}

func WithAutoCloseDelay(d time.Duration) Option {
	return func(m *Modal) {
		m.delay = d
	}
}

// WithOnClose registers a callback run after every close, whether from
// cancel or the success timer.
func WithOnClose(fn func()) Option {
	return func(m *Modal) {
		m.onClose = fn
	}
}

// Modal is the review dialog for one project, seen by one caller. It owns
// its draft; two modals never share one. Methods are safe to call from
// the UI goroutine and the auto-close timer concurrently.
type Modal struct {
	mu sync.Mutex

	project   Project
	role      Role
	submitter Submitter
	scheduler Scheduler
	delay     time.Duration
	onClose   func()

	status    Status
	form      Form
	autoClose Timer
	// epoch invalidates timers that fire after the modal moved on.
	epoch    uint64
	disposed bool
}

func NewModal(project Project, role Role, submitter Submitter, opts ...Option) *Modal {
	m := &Modal{
		project:   project,
		role:      role,
		submitter: submitter,
		scheduler: clockScheduler{},
		delay:     AutoCloseDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Modal) Target() (Party, bool) {
	return ResolveTarget(m.project, m.role)
}

func (m *Modal) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Modal) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.Draft()
}

func (m *Modal) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.ErrorMessage()
}

// Open shows the modal with an empty draft. Opening an open or disposed
// modal does nothing.
func (m *Modal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed || m.status != StatusClosed {
		return
	}
	m.form.Reset()
	m.status = StatusIdle
}

func (m *Modal) SetRating(field Field, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editableLocked(); err != nil {
		return err
	}
	if err := m.form.SetRating(field, value); err != nil {
		return err
	}
	m.status = StatusIdle
	return nil
}

func (m *Modal) SetComment(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editableLocked(); err != nil {
		return err
	}
	m.form.SetComment(text)
	m.status = StatusIdle
	return nil
}

// Submit validates the draft and, if it passes, sends it and blocks until
// the submitter answers. A call made while another is in flight returns
// ErrSubmitDisabled without sending anything. On success the modal closes
// itself after the auto-close delay.
func (m *Modal) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.disposed || (m.status != StatusIdle && m.status != StatusError) {
		m.mu.Unlock()
		return ErrSubmitDisabled
	}
	target, ok := m.Target()
	if !ok {
		m.mu.Unlock()
		return ErrNoTarget
	}
	if err := m.form.Validate(); err != nil {
		m.form.fail(err.Error())
		m.status = StatusError
		m.mu.Unlock()
		return err
	}

	payload := m.form.Draft().Submission(m.project.ID, target.ID)
	m.form.fail("")
	m.status = StatusSubmitting
	m.mu.Unlock()

	err := m.submitter.Submit(ctx, payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		if err != nil {
			return ErrSubmission
		}
		return nil
	}
	if err != nil {
		m.form.fail(ErrSubmission.Error())
		m.status = StatusError
		return ErrSubmission
	}

	m.status = StatusSuccess
	m.epoch++
	epoch := m.epoch
	m.autoClose = m.scheduler.AfterFunc(m.delay, func() {
		m.expire(epoch)
	})
	return nil
}

// Cancel closes the modal and drops the draft. It is ignored while a
// submission is in flight and reports whether the modal closed.
func (m *Modal) Cancel() bool {
	m.mu.Lock()
	if m.status == StatusClosed || m.status == StatusSubmitting {
		m.mu.Unlock()
		return false
	}
	m.closeLocked()
	onClose := m.onClose
	m.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return true
}

// Dispose tears the modal down for good: the pending auto-close is
// cancelled and a submission still in flight can no longer change state.
func (m *Modal) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.disposed = true
	m.closeLocked()
}

func (m *Modal) expire(epoch uint64) {
	m.mu.Lock()
	if m.disposed || epoch != m.epoch || m.status != StatusSuccess {
		m.mu.Unlock()
		return
	}
	m.closeLocked()
	onClose := m.onClose
	m.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (m *Modal) closeLocked() {
	if m.autoClose != nil {
		m.autoClose.Stop()
		m.autoClose = nil
	}
	m.epoch++
	m.form.Reset()
	m.status = StatusClosed
}

func (m *Modal) editableLocked() error {
	if m.disposed {
		return ErrNotEditable
	}
	if m.status != StatusIdle && m.status != StatusError {
		return ErrNotEditable
	}
	return nil
}
