package dummydb

import (
	"sort"

	"github.com/taskit/backend/core/task"
)

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db}
}

// deleteTaskCascade removes a task with its files and submissions.
// Callers must hold db.mu.
func (db *DB) deleteTaskCascade(taskID int) {
	delete(db.tasks, taskID)
	for fid, f := range db.taskFiles {
		if f.TaskID == taskID {
			delete(db.taskFiles, fid)
		}
	}
	for sid, sub := range db.submissions {
		if sub.TaskID != taskID {
			continue
		}
		delete(db.submissions, sid)
		for fid, f := range db.subFiles {
			if f.SubmissionID == sid {
				delete(db.subFiles, fid)
			}
		}
	}
}

func (repo *taskRepository) CreateTask(t *task.Task) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	t.ID = repo.db.nextPK("task")
	tsk := *t
	repo.db.tasks[t.ID] = &tsk
	return nil
}

func (repo *taskRepository) GetTaskByID(id int) (task.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	tsk, ok := repo.db.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return *tsk, nil
}

func (repo *taskRepository) GetClassroomTasks(classroomID int) ([]task.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	tasks := []task.Task{}
	for _, tsk := range repo.db.tasks {
		if tsk.ClassroomID == classroomID {
			tasks = append(tasks, *tsk)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].DueAt.Equal(tasks[j].DueAt) {
			return tasks[i].DueAt.Before(tasks[j].DueAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(t task.Task) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.tasks[t.ID]; !ok {
		return task.ErrNotFound
	}
	repo.db.tasks[t.ID] = &t
	return nil
}

func (repo *taskRepository) DeleteTask(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.deleteTaskCascade(id)
	return nil
}

func (repo *taskRepository) CreateTaskFile(f *task.TaskFile) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	f.ID = repo.db.nextPK("task_file")
	tf := *f
	repo.db.taskFiles[f.ID] = &tf
	return nil
}

func (repo *taskRepository) GetTaskFiles(taskID int) ([]task.TaskFile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	files := []task.TaskFile{}
	for _, f := range repo.db.taskFiles {
		if f.TaskID == taskID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}
