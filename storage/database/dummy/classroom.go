package dummydb

import (
	"sort"

	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/user"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClassroom(c *classroom.Classroom) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	c.ID = repo.db.nextPK("classroom")
	room := *c
	repo.db.classrooms[c.ID] = &room
	return nil
}

func (repo *classroomRepository) GetClassroomByID(id int) (classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	room, ok := repo.db.classrooms[id]
	if !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return *room, nil
}

func (repo *classroomRepository) GetClassroomByCode(code string) (classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, room := range repo.db.classrooms {
		if room.Code == code {
			return *room, nil
		}
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetTeacherClassrooms(teacherID int) ([]classroom.TeacherClassroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	rooms := []classroom.TeacherClassroom{}
	for _, room := range repo.db.classrooms {
		if room.TeacherID != teacherID {
			continue
		}
		tc := classroom.TeacherClassroom{Classroom: *room}
		for _, enr := range repo.db.enrollments {
			if enr.ClassroomID == room.ID {
				tc.StudentCount++
			}
		}
		for _, tsk := range repo.db.tasks {
			if tsk.ClassroomID == room.ID {
				tc.TaskCount++
			}
		}
		rooms = append(rooms, tc)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (repo *classroomRepository) GetStudentClassrooms(studentID int) ([]classroom.StudentClassroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	rooms := []classroom.StudentClassroom{}
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID {
			continue
		}
		room, ok := repo.db.classrooms[enr.ClassroomID]
		if !ok {
			continue
		}
		sc := classroom.StudentClassroom{Classroom: *room}
		if teacher, ok := repo.db.users[room.TeacherID]; ok {
			sc.TeacherName = teacher.FullName()
		}
		rooms = append(rooms, sc)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (repo *classroomRepository) UpdateClassroom(c classroom.Classroom) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.classrooms[c.ID]; !ok {
		return classroom.ErrNotFound
	}
	repo.db.classrooms[c.ID] = &c
	return nil
}

func (repo *classroomRepository) DeleteClassroom(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.classrooms, id)
	for eid, enr := range repo.db.enrollments {
		if enr.ClassroomID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	// cascade to tasks the way the real store does
	for tid, tsk := range repo.db.tasks {
		if tsk.ClassroomID != id {
			continue
		}
		repo.db.deleteTaskCascade(tid)
	}
	return nil
}

func (repo *classroomRepository) CodeExists(code string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, room := range repo.db.classrooms {
		if room.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) CreateEnrollment(e *classroom.Enrollment) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, enr := range repo.db.enrollments {
		if enr.ClassroomID == e.ClassroomID && enr.StudentID == e.StudentID {
			return classroom.ErrAlreadyEnrolled
		}
	}
	e.ID = repo.db.nextPK("enrollment")
	enr := *e
	repo.db.enrollments[e.ID] = &enr
	return nil
}

func (repo *classroomRepository) DeleteEnrollment(classroomID, studentID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, enr := range repo.db.enrollments {
		if enr.ClassroomID == classroomID && enr.StudentID == studentID {
			delete(repo.db.enrollments, id)
		}
	}
	return nil
}

func (repo *classroomRepository) IsEnrolled(classroomID, studentID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, enr := range repo.db.enrollments {
		if enr.ClassroomID == classroomID && enr.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) GetClassroomStudents(classroomID int) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	students := []user.User{}
	for _, enr := range repo.db.enrollments {
		if enr.ClassroomID != classroomID {
			continue
		}
		if usr, ok := repo.db.users[enr.StudentID]; ok {
			students = append(students, *usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}
