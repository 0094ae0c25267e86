package classroom

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/user"
)

var (
	ErrNotFound        = errors.New("classroom not found")
	ErrAlreadyEnrolled = errors.New("student is already in this classroom")

	errBadCode        = errors.New("class codes are 7 letters or digits")
	errUnknownStudent = errors.New("no student matches this ID number")
)

type Repository interface {
	CreateClassroom(c *Classroom) error
	GetClassroomByID(id int) (Classroom, error)
	GetClassroomByCode(code string) (Classroom, error)
	GetTeacherClassrooms(teacherID int) ([]TeacherClassroom, error)
	GetStudentClassrooms(studentID int) ([]StudentClassroom, error)
	UpdateClassroom(c Classroom) error
	DeleteClassroom(id int) error
	CodeExists(code string) (bool, error)
	CreateEnrollment(e *Enrollment) error
	DeleteEnrollment(classroomID, studentID int) error
	IsEnrolled(classroomID, studentID int) (bool, error)
	GetClassroomStudents(classroomID int) ([]user.User, error)
}

// UserDirectory is the slice of the user store this service needs to
// resolve students by ID number. user.Repository satisfies it.
type UserDirectory interface {
	GetUserByIDNumber(idNumber string) (user.User, error)
}

type Service struct {
	repo     Repository
	users    UserDirectory
	validate *validator.Validate
}

func NewService(repo Repository, users UserDirectory, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		validate: validate,
	}
}

// Create opens a new classroom owned by teacher with a fresh join code.
func (svc *Service) Create(teacher user.User, data CreateClassroom) (Classroom, error) {
	if err := data.Validate(svc); err != nil {
		return Classroom{}, err
	}
	code, err := svc.generateUniqueCode()
	if err != nil {
		return Classroom{}, err
	}
	room := Classroom{
		TeacherID: teacher.ID,
		Name:      data.Name,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err = svc.repo.CreateClassroom(&room); err != nil {
		return Classroom{}, err
	}
	return room, nil
}

// GetForTeacher returns the classroom only if teacher owns it. A
// classroom owned by someone else is reported as not found. Rows that
// carry a malformed code are healed with a fresh one before use.
func (svc *Service) GetForTeacher(teacher user.User, id int) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return Classroom{}, err
	}
	if room.TeacherID != teacher.ID {
		return Classroom{}, ErrNotFound
	}
	return svc.healCode(room)
}

func (svc *Service) healCode(room Classroom) (Classroom, error) {
	if IsValidCode(room.Code) {
		return room, nil
	}
	code, err := svc.generateUniqueCode()
	if err != nil {
		return Classroom{}, err
	}
	room.Code = code
	if err = svc.repo.UpdateClassroom(room); err != nil {
		return Classroom{}, err
	}
	return room, nil
}

func (svc *Service) ListForTeacher(teacher user.User) ([]TeacherClassroom, error) {
	rooms, err := svc.repo.GetTeacherClassrooms(teacher.ID)
	if err != nil {
		return nil, err
	}
	for i, room := range rooms {
		healed, err := svc.healCode(room.Classroom)
		if err != nil {
			return nil, err
		}
		rooms[i].Classroom = healed
	}
	return rooms, nil
}

func (svc *Service) Rename(teacher user.User, id int, data RenameClassroom) (Classroom, error) {
	if err := data.Validate(svc); err != nil {
		return Classroom{}, err
	}
	room, err := svc.GetForTeacher(teacher, id)
	if err != nil {
		return Classroom{}, err
	}
	room.Name = data.Name
	if err = svc.repo.UpdateClassroom(room); err != nil {
		return Classroom{}, err
	}
	return room, nil
}

// Delete removes the classroom; the store cascades to its enrollments,
// tasks and submissions.
func (svc *Service) Delete(teacher user.User, id int) error {
	if _, err := svc.GetForTeacher(teacher, id); err != nil {
		return err
	}
	return svc.repo.DeleteClassroom(id)
}

// Join redeems a code for student. Joining a classroom the student is
// already in succeeds without a second enrollment row.
func (svc *Service) Join(student user.User, data JoinClassroom) (Classroom, error) {
	if err := data.Validate(svc); err != nil {
		return Classroom{}, err
	}
	if !IsValidCode(data.Code) {
		return Classroom{}, core.NewValidationErrorWithValues(errBadCode, data.Values())
	}
	room, err := svc.repo.GetClassroomByCode(data.Code)
	if err != nil {
		// a well-formed code that matches nothing is a missing
		// resource, not an input error
		return Classroom{}, err
	}
	enr := Enrollment{
		ClassroomID: room.ID,
		StudentID:   student.ID,
		CreatedAt:   time.Now(),
	}
	if err = svc.repo.CreateEnrollment(&enr); err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return room, nil
		}
		return Classroom{}, err
	}
	return room, nil
}

// Leave drops student from the classroom. Leaving a classroom the
// student is not in is a no-op.
func (svc *Service) Leave(student user.User, classroomID int) error {
	return svc.repo.DeleteEnrollment(classroomID, student.ID)
}

// AddStudent enrolls the student bearing data.IDNumber. Unlike Join,
// enrolling an already present student is a conflict so the teacher
// sees the mistake.
func (svc *Service) AddStudent(teacher user.User, classroomID int, data AddStudent) (user.User, error) {
	if err := data.Validate(svc); err != nil {
		return user.User{}, err
	}
	room, err := svc.GetForTeacher(teacher, classroomID)
	if err != nil {
		return user.User{}, err
	}
	student, err := svc.users.GetUserByIDNumber(data.IDNumber)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewValidationErrorWithValues(errUnknownStudent, data.Values())
		}
		return user.User{}, err
	}
	if !student.IsStudent() {
		return user.User{}, core.NewValidationErrorWithValues(errUnknownStudent, data.Values())
	}
	enr := Enrollment{
		ClassroomID: room.ID,
		StudentID:   student.ID,
		CreatedAt:   time.Now(),
	}
	if err = svc.repo.CreateEnrollment(&enr); err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return user.User{}, core.NewConflictError(ErrAlreadyEnrolled, data.Values())
		}
		return user.User{}, err
	}
	return student, nil
}

func (svc *Service) RemoveStudent(teacher user.User, classroomID, studentID int) error {
	if _, err := svc.GetForTeacher(teacher, classroomID); err != nil {
		return err
	}
	return svc.repo.DeleteEnrollment(classroomID, studentID)
}

func (svc *Service) ListStudents(teacher user.User, classroomID int) ([]user.User, error) {
	if _, err := svc.GetForTeacher(teacher, classroomID); err != nil {
		return nil, err
	}
	return svc.repo.GetClassroomStudents(classroomID)
}

// GetForStudent returns the classroom only if student is enrolled.
// Non-enrollment and nonexistence look identical to the caller.
func (svc *Service) GetForStudent(student user.User, id int) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return Classroom{}, err
	}
	enrolled, err := svc.repo.IsEnrolled(id, student.ID)
	if err != nil {
		return Classroom{}, err
	}
	if !enrolled {
		return Classroom{}, ErrNotFound
	}
	return room, nil
}

func (svc *Service) ListForStudent(student user.User) ([]StudentClassroom, error) {
	return svc.repo.GetStudentClassrooms(student.ID)
}
