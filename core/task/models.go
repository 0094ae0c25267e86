package task

import (
	"time"

	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
)

type Task struct {
	ID           int       `json:"id" db:"id"`
	ClassroomID  int       `json:"classroom_id" db:"classroom_id"`
	Title        string    `json:"title" db:"title"`
	Instructions string    `json:"instructions" db:"instructions"`
	DueAt        time.Time `json:"due_at" db:"due_at"` // UTC midnight of the due date
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TaskFile is attachment metadata for a file a teacher posted with a
// task. The payload lives in the attachment store.
type TaskFile struct {
	ID          int       `json:"id" db:"id"`
	TaskID      int       `json:"task_id" db:"task_id"`
	Name        string    `json:"name" db:"name"`
	URL         string    `json:"url" db:"url"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DueDate returns the calendar-date rendering of DueAt, dd/mm/yyyy.
func (t *Task) DueDate() string {
	return t.DueAt.UTC().Format(dueDateDisplayLayout)
}

const (
	dueDateDisplayLayout = "02/01/2006"
	dueDateISOLayout     = "2006-01-02"
)

var errBadDueDate = errors.New("due date must be dd/mm/yyyy or yyyy-mm-dd")

// ParseDueDate accepts dd/mm/yyyy or yyyy-mm-dd and pins the date to
// UTC midnight.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range []string{dueDateDisplayLayout, dueDateISOLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDueDate
}

// todayUTC returns the current day's UTC midnight.
func todayUTC(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SaveTask carries a task edit. DueDate is the raw form value; it is
// parsed and range checked in Validate.
type SaveTask struct {
	Title        string `json:"title" form:"taskName" validate:"required,max=200"`
	Instructions string `json:"instructions" form:"instructions" validate:"max=10000"`
	DueDate      string `json:"due_date" form:"dueDate" validate:"required"`

	dueAt time.Time
}

func (st *SaveTask) Validate(svc *Service) error {
	st.Title = core.CleanString(st.Title)
	st.DueDate = core.CleanString(st.DueDate)
	if err := svc.validate.Struct(st); err != nil {
		return err
	}

	dueAt, err := ParseDueDate(st.DueDate)
	if err != nil {
		return core.NewValidationErrorWithValues(err, st.Values())
	}
	// tasks cannot be created already expired
	if dueAt.Before(todayUTC(svc.now())) {
		return core.NewValidationErrorWithValues(errPastDueDate, st.Values())
	}
	st.dueAt = dueAt
	return nil
}

func (st *SaveTask) Values() map[string]string {
	return map[string]string{
		"taskName":     st.Title,
		"instructions": st.Instructions,
		"dueDate":      st.DueDate,
	}
}

type RenameTask struct {
	Title string `json:"title" form:"taskName" validate:"required,max=200"`
}

func (rt *RenameTask) Validate(svc *Service) error {
	rt.Title = core.CleanString(rt.Title)
	return svc.validate.Struct(rt)
}

func (rt *RenameTask) Values() map[string]string {
	return map[string]string{"taskName": rt.Title}
}
