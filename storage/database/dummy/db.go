// Package dummydb is an in-memory stand-in for the real store, used in
// tests and for running the API without PostgreSQL.
package dummydb

import (
	"sync"

	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/submission"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

type (
	DB struct {
		mu sync.RWMutex

		users       map[int]*user.User
		sessions    map[int]*user.Session
		classrooms  map[int]*classroom.Classroom
		enrollments map[int]*classroom.Enrollment
		tasks       map[int]*task.Task
		taskFiles   map[int]*task.TaskFile
		submissions map[int]*submission.Submission
		subFiles    map[int]*submission.SubmissionFile

		pks map[string]int
	}
)

func Open() *DB {
	return &DB{
		users:       make(map[int]*user.User),
		sessions:    make(map[int]*user.Session),
		classrooms:  make(map[int]*classroom.Classroom),
		enrollments: make(map[int]*classroom.Enrollment),
		tasks:       make(map[int]*task.Task),
		taskFiles:   make(map[int]*task.TaskFile),
		submissions: make(map[int]*submission.Submission),
		subFiles:    make(map[int]*submission.SubmissionFile),
		pks:         make(map[string]int),
	}
}

// nextPK hands out serial ids per table. Callers must hold db.mu.
func (db *DB) nextPK(table string) int {
	db.pks[table]++
	return db.pks[table]
}
