package classroom

import (
	"strings"
	"time"

	"github.com/taskit/backend/core"
)

type Classroom struct {
	ID        int       `json:"id" db:"id"`
	TeacherID int       `json:"teacher_id" db:"teacher_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// Enrollment links one student to one classroom. At most one row per
// (classroom, student) pair.
type Enrollment struct {
	ID          int       `json:"-" db:"id"`
	ClassroomID int       `json:"classroom_id" db:"classroom_id"`
	StudentID   int       `json:"student_id" db:"student_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// TeacherClassroom is the teacher dashboard view of a classroom.
type TeacherClassroom struct {
	Classroom
	StudentCount int `json:"student_count" db:"student_count"`
	TaskCount    int `json:"task_count" db:"task_count"`
}

// StudentClassroom is the student dashboard view of a classroom.
type StudentClassroom struct {
	Classroom
	TeacherName string `json:"teacher_name" db:"teacher_name"`
}

// CreateClassroom contains information needed to open a new classroom.
type CreateClassroom struct {
	Name string `json:"name" form:"className" validate:"required,max=120"`
}

func (cc *CreateClassroom) Validate(svc *Service) error {
	cc.Name = core.CleanString(cc.Name)
	return svc.validate.Struct(cc)
}

func (cc *CreateClassroom) Values() map[string]string {
	return map[string]string{"className": cc.Name}
}

type RenameClassroom struct {
	Name string `json:"name" form:"className" validate:"required,max=120"`
}

func (rc *RenameClassroom) Validate(svc *Service) error {
	rc.Name = core.CleanString(rc.Name)
	return svc.validate.Struct(rc)
}

func (rc *RenameClassroom) Values() map[string]string {
	return map[string]string{"className": rc.Name}
}

// JoinClassroom carries the join code a student redeems. The code is
// upcased before use so entry is case insensitive.
type JoinClassroom struct {
	Code string `json:"code" form:"joinCode" validate:"required"`
}

func (jc *JoinClassroom) Validate(svc *Service) error {
	jc.Code = strings.ToUpper(core.CleanString(jc.Code))
	return svc.validate.Struct(jc)
}

func (jc *JoinClassroom) Values() map[string]string {
	return map[string]string{"joinCode": jc.Code}
}

// AddStudent identifies a student to enroll by their ID number.
type AddStudent struct {
	IDNumber string `json:"id_number" form:"studentIdNumber" validate:"required,idnumber"`
}

func (as *AddStudent) Validate(svc *Service) error {
	as.IDNumber = core.CleanString(as.IDNumber)
	return svc.validate.Struct(as)
}

func (as *AddStudent) Values() map[string]string {
	return map[string]string{"studentIdNumber": as.IDNumber}
}
