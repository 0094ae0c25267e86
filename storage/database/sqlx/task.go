package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core/task"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(t *task.Task) error {
	err := repo.db.QueryRowx(
		`INSERT INTO task (classroom_id, title, instructions, due_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		t.ClassroomID, t.Title, t.Instructions, t.DueAt,
	).Scan(&t.ID, &t.CreatedAt)
	return errors.Wrap(err, "creating task")
}

func (repo *taskRepository) GetTaskByID(id int) (task.Task, error) {
	var tsk task.Task
	err := repo.db.Get(&tsk, `SELECT * FROM task WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return task.Task{}, task.ErrNotFound
	}
	return tsk, errors.Wrap(err, "getting task")
}

func (repo *taskRepository) GetClassroomTasks(classroomID int) ([]task.Task, error) {
	tasks := []task.Task{}
	err := repo.db.Select(&tasks,
		`SELECT * FROM task WHERE classroom_id = $1 ORDER BY due_at, created_at`,
		classroomID,
	)
	return tasks, errors.Wrap(err, "listing classroom tasks")
}

func (repo *taskRepository) UpdateTask(t task.Task) error {
	res, err := repo.db.Exec(
		`UPDATE task SET title = $1, instructions = $2, due_at = $3 WHERE id = $4`,
		t.Title, t.Instructions, t.DueAt, t.ID,
	)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (repo *taskRepository) DeleteTask(id int) error {
	_, err := repo.db.Exec(`DELETE FROM task WHERE id = $1`, id)
	return errors.Wrap(err, "deleting task")
}

func (repo *taskRepository) CreateTaskFile(f *task.TaskFile) error {
	err := repo.db.QueryRowx(
		`INSERT INTO task_file (task_id, name, url, content_type, size)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		f.TaskID, f.Name, f.URL, f.ContentType, f.Size,
	).Scan(&f.ID, &f.CreatedAt)
	return errors.Wrap(err, "creating task file")
}

func (repo *taskRepository) GetTaskFiles(taskID int) ([]task.TaskFile, error) {
	files := []task.TaskFile{}
	err := repo.db.Select(&files,
		`SELECT * FROM task_file WHERE task_id = $1 ORDER BY created_at`,
		taskID,
	)
	return files, errors.Wrap(err, "listing task files")
}
