package task

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/user"
)

var (
	ErrNotFound = errors.New("task not found")

	errPastDueDate = errors.New("the due date has already passed")
)

const (
	defaultTitle   = "New Task"
	defaultDueDays = 14
)

type Repository interface {
	CreateTask(t *Task) error
	GetTaskByID(id int) (Task, error)
	GetClassroomTasks(classroomID int) ([]Task, error)
	UpdateTask(t Task) error
	DeleteTask(id int) error
	CreateTaskFile(f *TaskFile) error
	GetTaskFiles(taskID int) ([]TaskFile, error)
}

// ClassroomGuard is the slice of the classroom service used for
// transitive ownership checks. classroom.Service satisfies it.
type ClassroomGuard interface {
	GetForTeacher(teacher user.User, id int) (classroom.Classroom, error)
	GetForStudent(student user.User, id int) (classroom.Classroom, error)
}

type Service struct {
	repo       Repository
	classrooms ClassroomGuard
	files      core.FileStore
	validate   *validator.Validate
	now        func() time.Time
}

func NewService(repo Repository, classrooms ClassroomGuard, files core.FileStore, validate *validator.Validate) *Service {
	return &Service{
		repo:       repo,
		classrooms: classrooms,
		files:      files,
		validate:   validate,
		now:        time.Now,
	}
}

// Create posts a placeholder task to the classroom; the teacher then
// fills it in on the edit page.
func (svc *Service) Create(teacher user.User, classroomID int) (Task, error) {
	if _, err := svc.classrooms.GetForTeacher(teacher, classroomID); err != nil {
		return Task{}, asNotFound(err)
	}
	tsk := Task{
		ClassroomID: classroomID,
		Title:       defaultTitle,
		DueAt:       todayUTC(svc.now()).AddDate(0, 0, defaultDueDays),
		CreatedAt:   svc.now(),
	}
	if err := svc.repo.CreateTask(&tsk); err != nil {
		return Task{}, err
	}
	return tsk, nil
}

// GetForTeacher returns the task and its files only if teacher owns the
// parent classroom. Anything else is not found.
func (svc *Service) GetForTeacher(teacher user.User, id int) (Task, []TaskFile, error) {
	tsk, err := svc.repo.GetTaskByID(id)
	if err != nil {
		return Task{}, nil, asNotFound(err)
	}
	if _, err = svc.classrooms.GetForTeacher(teacher, tsk.ClassroomID); err != nil {
		return Task{}, nil, asNotFound(err)
	}
	files, err := svc.repo.GetTaskFiles(id)
	if err != nil {
		return Task{}, nil, err
	}
	return tsk, files, nil
}

func (svc *Service) ListForTeacher(teacher user.User, classroomID int) ([]Task, error) {
	if _, err := svc.classrooms.GetForTeacher(teacher, classroomID); err != nil {
		return nil, asNotFound(err)
	}
	return svc.repo.GetClassroomTasks(classroomID)
}

// Save applies an edit and appends any attached files. Files are
// filtered for empty payloads and written to the store before their
// metadata rows.
func (svc *Service) Save(teacher user.User, id int, data SaveTask, uploads []core.FileUpload) (Task, error) {
	if err := data.Validate(svc); err != nil {
		return Task{}, err
	}
	tsk, _, err := svc.GetForTeacher(teacher, id)
	if err != nil {
		return Task{}, err
	}

	tsk.Title = data.Title
	tsk.Instructions = data.Instructions
	tsk.DueAt = data.dueAt
	if err = svc.repo.UpdateTask(tsk); err != nil {
		return Task{}, err
	}

	for _, up := range uploads {
		if up.Size == 0 {
			continue
		}
		saved, err := svc.files.Save(core.UploadKindTasks, tsk.ID, up)
		if err != nil {
			return Task{}, err
		}
		tf := TaskFile{
			TaskID:      tsk.ID,
			Name:        saved.Name,
			URL:         saved.URL,
			ContentType: saved.ContentType,
			Size:        saved.Size,
			CreatedAt:   svc.now(),
		}
		if err = svc.repo.CreateTaskFile(&tf); err != nil {
			return Task{}, err
		}
	}
	return tsk, nil
}

func (svc *Service) Rename(teacher user.User, id int, data RenameTask) (Task, error) {
	if err := data.Validate(svc); err != nil {
		return Task{}, err
	}
	tsk, _, err := svc.GetForTeacher(teacher, id)
	if err != nil {
		return Task{}, err
	}
	tsk.Title = data.Title
	if err = svc.repo.UpdateTask(tsk); err != nil {
		return Task{}, err
	}
	return tsk, nil
}

// Delete removes the task; the store cascades to its files and
// submissions. Attachment payloads are cleaned up best effort.
func (svc *Service) Delete(teacher user.User, id int) error {
	if _, _, err := svc.GetForTeacher(teacher, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteTask(id); err != nil {
		return err
	}
	_ = svc.files.DeleteAll(core.UploadKindTasks, id)
	return nil
}

// GetForStudent returns the task and its files only if student is
// enrolled in the parent classroom.
func (svc *Service) GetForStudent(student user.User, id int) (Task, []TaskFile, error) {
	tsk, err := svc.repo.GetTaskByID(id)
	if err != nil {
		return Task{}, nil, asNotFound(err)
	}
	if _, err = svc.classrooms.GetForStudent(student, tsk.ClassroomID); err != nil {
		return Task{}, nil, asNotFound(err)
	}
	files, err := svc.repo.GetTaskFiles(id)
	if err != nil {
		return Task{}, nil, err
	}
	return tsk, files, nil
}

func (svc *Service) ListForStudent(student user.User, classroomID int) ([]Task, error) {
	if _, err := svc.classrooms.GetForStudent(student, classroomID); err != nil {
		return nil, asNotFound(err)
	}
	return svc.repo.GetClassroomTasks(classroomID)
}

// asNotFound folds classroom ownership failures into this package's
// not-found so callers cannot tell a hidden task from a missing one.
func asNotFound(err error) error {
	if errors.Cause(err) == classroom.ErrNotFound || errors.Cause(err) == ErrNotFound {
		return ErrNotFound
	}
	return err
}
