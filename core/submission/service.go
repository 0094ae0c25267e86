package submission

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

var (
	ErrNotFound = errors.New("submission not found")

	errNoFiles = errors.New("attach at least one file to submit")
)

type Repository interface {
	CreateSubmission(s *Submission) error
	GetSubmission(taskID, studentID int) (Submission, error)
	UpdateSubmission(s Submission) error
	GetTaskSubmissions(taskID int) ([]Submission, error)
	GetStudentSubmissions(classroomID, studentID int) ([]Submission, error)
	CreateSubmissionFile(f *SubmissionFile) error
	GetSubmissionFiles(submissionID int) ([]SubmissionFile, error)
	DeleteSubmissionFiles(submissionID int) error
}

// TaskGuard is the slice of the task service used for transitive
// ownership checks. task.Service satisfies it.
type TaskGuard interface {
	GetForTeacher(teacher user.User, id int) (task.Task, []task.TaskFile, error)
	GetForStudent(student user.User, id int) (task.Task, []task.TaskFile, error)
}

// Roster resolves the students a review sheet covers. classroom.Service
// satisfies it.
type Roster interface {
	ListStudents(teacher user.User, classroomID int) ([]user.User, error)
}

type Service struct {
	repo     Repository
	tasks    TaskGuard
	roster   Roster
	files    core.FileStore
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, tasks TaskGuard, roster Roster, files core.FileStore, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		roster:   roster,
		files:    files,
		validate: validate,
		now:      time.Now,
	}
}

// Submit records student's attempt at the task. A resubmission stamps a
// fresh submitted-at and voids any prior grade; if new files come with
// it the old file set is replaced wholesale, otherwise the old files
// stand. A submission must carry at least one file over its lifetime,
// counting only non-empty uploads.
func (svc *Service) Submit(student user.User, taskID int, uploads []core.FileUpload) (Submission, error) {
	if _, _, err := svc.tasks.GetForStudent(student, taskID); err != nil {
		return Submission{}, asNotFound(err)
	}

	var files []core.FileUpload
	for _, up := range uploads {
		if up.Size > 0 {
			files = append(files, up)
		}
	}

	sub, err := svc.repo.GetSubmission(taskID, student.ID)
	switch {
	case err == nil:
		if len(files) == 0 {
			existing, err := svc.repo.GetSubmissionFiles(sub.ID)
			if err != nil {
				return Submission{}, err
			}
			if len(existing) == 0 {
				return Submission{}, core.NewValidationError(errNoFiles)
			}
		}
		// a resubmission invalidates any prior grade
		sub.SubmittedAt = null.TimeFrom(svc.now())
		sub.Grade = null.Int{}
		if err = svc.repo.UpdateSubmission(sub); err != nil {
			return Submission{}, err
		}
	case errors.Cause(err) == ErrNotFound:
		if len(files) == 0 {
			return Submission{}, core.NewValidationError(errNoFiles)
		}
		sub = Submission{
			TaskID:      taskID,
			StudentID:   student.ID,
			SubmittedAt: null.TimeFrom(svc.now()),
			CreatedAt:   svc.now(),
		}
		if err = svc.repo.CreateSubmission(&sub); err != nil {
			return Submission{}, err
		}
	default:
		return Submission{}, err
	}

	if len(files) > 0 {
		if err = svc.replaceFiles(sub.ID, files); err != nil {
			return Submission{}, err
		}
	}
	return sub, nil
}

func (svc *Service) replaceFiles(submissionID int, files []core.FileUpload) error {
	if err := svc.repo.DeleteSubmissionFiles(submissionID); err != nil {
		return err
	}
	_ = svc.files.DeleteAll(core.UploadKindSubmissions, submissionID) // payloads, best effort

	for _, up := range files {
		saved, err := svc.files.Save(core.UploadKindSubmissions, submissionID, up)
		if err != nil {
			return err
		}
		sf := SubmissionFile{
			SubmissionID: submissionID,
			Name:         saved.Name,
			URL:          saved.URL,
			ContentType:  saved.ContentType,
			Size:         saved.Size,
			CreatedAt:    svc.now(),
		}
		if err = svc.repo.CreateSubmissionFile(&sf); err != nil {
			return err
		}
	}
	return nil
}

// Grade assigns a mark. Only submissions that were actually handed in
// can be graded; an unsubmitted placeholder is reported as not found.
// Regrading overwrites, no history is kept.
func (svc *Service) Grade(teacher user.User, taskID, studentID int, data GradeSubmission) (Submission, error) {
	if err := data.Validate(svc); err != nil {
		return Submission{}, err
	}
	if _, _, err := svc.tasks.GetForTeacher(teacher, taskID); err != nil {
		return Submission{}, asNotFound(err)
	}
	sub, err := svc.repo.GetSubmission(taskID, studentID)
	if err != nil {
		return Submission{}, err
	}
	if !sub.SubmittedAt.Valid {
		return Submission{}, ErrNotFound
	}
	sub.Grade = null.IntFrom(data.score)
	if err = svc.repo.UpdateSubmission(sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// GetForStudent returns student's submission to the task, or nil if
// nothing was handed in yet.
func (svc *Service) GetForStudent(student user.User, taskID int) (*Submission, []SubmissionFile, error) {
	if _, _, err := svc.tasks.GetForStudent(student, taskID); err != nil {
		return nil, nil, asNotFound(err)
	}
	sub, err := svc.repo.GetSubmission(taskID, student.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	files, err := svc.repo.GetSubmissionFiles(sub.ID)
	if err != nil {
		return nil, nil, err
	}
	return &sub, files, nil
}

// ReviewRow is one student line on a task's review sheet.
type ReviewRow struct {
	Student    user.User        `json:"student"`
	Submission *Submission      `json:"submission"`
	Files      []SubmissionFile `json:"files"`
	Status     string           `json:"status"`
}

// ListForTask builds the review sheet: every enrolled student with
// whatever they handed in, submitted or not.
func (svc *Service) ListForTask(teacher user.User, taskID int) ([]ReviewRow, error) {
	tsk, _, err := svc.tasks.GetForTeacher(teacher, taskID)
	if err != nil {
		return nil, asNotFound(err)
	}
	students, err := svc.roster.ListStudents(teacher, tsk.ClassroomID)
	if err != nil {
		return nil, err
	}
	subs, err := svc.repo.GetTaskSubmissions(taskID)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int]Submission, len(subs))
	for _, sub := range subs {
		byStudent[sub.StudentID] = sub
	}

	rows := make([]ReviewRow, 0, len(students))
	for _, student := range students {
		row := ReviewRow{Student: student, Status: StatusDue}
		if sub, ok := byStudent[student.ID]; ok {
			files, err := svc.repo.GetSubmissionFiles(sub.ID)
			if err != nil {
				return nil, err
			}
			sub := sub
			row.Submission = &sub
			row.Files = files
			row.Status = sub.Status()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StatusesForClassroom maps task id to derived status for student's
// view of a classroom. Tasks without a submission row are simply absent
// and render as due.
func (svc *Service) StatusesForClassroom(student user.User, classroomID int) (map[int]string, error) {
	subs, err := svc.repo.GetStudentSubmissions(classroomID, student.ID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[int]string, len(subs))
	for _, sub := range subs {
		statuses[sub.TaskID] = DeriveStatus(sub.SubmittedAt, sub.Grade)
	}
	return statuses, nil
}

func asNotFound(err error) error {
	if errors.Cause(err) == task.ErrNotFound || errors.Cause(err) == ErrNotFound {
		return ErrNotFound
	}
	return err
}
