package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/user"
)

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClassroom(c *classroom.Classroom) error {
	err := repo.db.QueryRowx(
		`INSERT INTO classroom (teacher_id, name, code)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.TeacherID, c.Name, c.Code,
	).Scan(&c.ID, &c.CreatedAt)
	return errors.Wrap(err, "creating classroom")
}

func (repo *classroomRepository) GetClassroomByID(id int) (classroom.Classroom, error) {
	var room classroom.Classroom
	err := repo.db.Get(&room, `SELECT * FROM classroom WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return room, errors.Wrap(err, "getting classroom")
}

func (repo *classroomRepository) GetClassroomByCode(code string) (classroom.Classroom, error) {
	var room classroom.Classroom
	err := repo.db.Get(&room, `SELECT * FROM classroom WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return room, errors.Wrap(err, "getting classroom by code")
}

func (repo *classroomRepository) GetTeacherClassrooms(teacherID int) ([]classroom.TeacherClassroom, error) {
	rooms := []classroom.TeacherClassroom{}
	err := repo.db.Select(&rooms,
		`SELECT c.*,
		        (SELECT count(*) FROM enrollment e WHERE e.classroom_id = c.id) AS student_count,
		        (SELECT count(*) FROM task t WHERE t.classroom_id = c.id)       AS task_count
		 FROM classroom c
		 WHERE c.teacher_id = $1
		 ORDER BY c.created_at`,
		teacherID,
	)
	return rooms, errors.Wrap(err, "listing teacher classrooms")
}

func (repo *classroomRepository) GetStudentClassrooms(studentID int) ([]classroom.StudentClassroom, error) {
	rooms := []classroom.StudentClassroom{}
	err := repo.db.Select(&rooms,
		`SELECT c.*, u.first_name || ' ' || u.last_name AS teacher_name
		 FROM classroom c
		 JOIN enrollment e ON e.classroom_id = c.id
		 JOIN app_user u ON u.id = c.teacher_id
		 WHERE e.student_id = $1
		 ORDER BY e.created_at`,
		studentID,
	)
	return rooms, errors.Wrap(err, "listing student classrooms")
}

func (repo *classroomRepository) UpdateClassroom(c classroom.Classroom) error {
	res, err := repo.db.Exec(
		`UPDATE classroom SET name = $1, code = $2 WHERE id = $3`,
		c.Name, c.Code, c.ID,
	)
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.ErrNotFound
	}
	return nil
}

func (repo *classroomRepository) DeleteClassroom(id int) error {
	_, err := repo.db.Exec(`DELETE FROM classroom WHERE id = $1`, id)
	return errors.Wrap(err, "deleting classroom")
}

func (repo *classroomRepository) CodeExists(code string) (bool, error) {
	var exists bool
	err := repo.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM classroom WHERE code = $1)`, code)
	return exists, errors.Wrap(err, "checking classroom code")
}

func (repo *classroomRepository) CreateEnrollment(e *classroom.Enrollment) error {
	err := repo.db.QueryRowx(
		`INSERT INTO enrollment (classroom_id, student_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		e.ClassroomID, e.StudentID,
	).Scan(&e.ID, &e.CreatedAt)
	if isUniqueViolation(err, "enrollment_classroom_id_student_id_key") {
		return classroom.ErrAlreadyEnrolled
	}
	return errors.Wrap(err, "creating enrollment")
}

func (repo *classroomRepository) DeleteEnrollment(classroomID, studentID int) error {
	_, err := repo.db.Exec(
		`DELETE FROM enrollment WHERE classroom_id = $1 AND student_id = $2`,
		classroomID, studentID,
	)
	return errors.Wrap(err, "deleting enrollment")
}

func (repo *classroomRepository) IsEnrolled(classroomID, studentID int) (bool, error) {
	var enrolled bool
	err := repo.db.Get(&enrolled,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE classroom_id = $1 AND student_id = $2)`,
		classroomID, studentID,
	)
	return enrolled, errors.Wrap(err, "checking enrollment")
}

func (repo *classroomRepository) GetClassroomStudents(classroomID int) ([]user.User, error) {
	students := []user.User{}
	err := repo.db.Select(&students,
		`SELECT u.*
		 FROM app_user u
		 JOIN enrollment e ON e.student_id = u.id
		 WHERE e.classroom_id = $1
		 ORDER BY u.last_name, u.first_name`,
		classroomID,
	)
	return students, errors.Wrap(err, "listing classroom students")
}
