package submission

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taskit/backend/core"
)

// Submission is a student's single attempt record for a task. There is
// at most one row per (task, student); resubmission overwrites it.
type Submission struct {
	ID          int       `json:"id" db:"id"`
	TaskID      int       `json:"task_id" db:"task_id"`
	StudentID   int       `json:"student_id" db:"student_id"`
	SubmittedAt null.Time `json:"submitted_at" db:"submitted_at"`
	Grade       null.Int  `json:"grade" db:"grade"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type SubmissionFile struct {
	ID           int       `json:"id" db:"id"`
	SubmissionID int       `json:"submission_id" db:"submission_id"`
	Name         string    `json:"name" db:"name"`
	URL          string    `json:"url" db:"url"`
	ContentType  string    `json:"content_type" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Submission statuses, derived on every read and never stored.
const (
	StatusDue       = "due"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

// DeriveStatus is the single source of truth for a submission's state.
// A nil submission (no row yet) is due.
func DeriveStatus(submittedAt null.Time, grade null.Int) string {
	switch {
	case grade.Valid:
		return StatusGraded
	case submittedAt.Valid:
		return StatusSubmitted
	default:
		return StatusDue
	}
}

func (s *Submission) Status() string {
	if s == nil {
		return StatusDue
	}
	return DeriveStatus(s.SubmittedAt, s.Grade)
}

// GradeSubmission carries the mark a teacher assigns. Grade arrives as
// a raw form value and is range checked in Validate.
type GradeSubmission struct {
	Grade string `json:"grade" form:"grade" validate:"required"`

	score int
}

var errBadGrade = errors.New("grade must be a whole number between 0 and 100")

func (gs *GradeSubmission) Validate(svc *Service) error {
	gs.Grade = core.CleanString(gs.Grade)
	if err := svc.validate.Struct(gs); err != nil {
		return err
	}
	score, err := strconv.Atoi(gs.Grade)
	if err != nil || score < 0 || score > 100 {
		return core.NewValidationErrorWithValues(errBadGrade, gs.Values())
	}
	gs.score = score
	return nil
}

func (gs *GradeSubmission) Values() map[string]string {
	return map[string]string{"grade": gs.Grade}
}
