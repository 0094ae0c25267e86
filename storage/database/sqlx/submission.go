package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core/submission"
)

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(s *submission.Submission) error {
	err := repo.db.QueryRowx(
		`INSERT INTO submission (task_id, student_id, submitted_at, grade)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.TaskID, s.StudentID, s.SubmittedAt, s.Grade,
	).Scan(&s.ID, &s.CreatedAt)
	return errors.Wrap(err, "creating submission")
}

func (repo *submissionRepository) GetSubmission(taskID, studentID int) (submission.Submission, error) {
	var sub submission.Submission
	err := repo.db.Get(&sub,
		`SELECT * FROM submission WHERE task_id = $1 AND student_id = $2`,
		taskID, studentID,
	)
	if err == sql.ErrNoRows {
		return submission.Submission{}, submission.ErrNotFound
	}
	return sub, errors.Wrap(err, "getting submission")
}

func (repo *submissionRepository) UpdateSubmission(s submission.Submission) error {
	res, err := repo.db.Exec(
		`UPDATE submission SET submitted_at = $1, grade = $2 WHERE id = $3`,
		s.SubmittedAt, s.Grade, s.ID,
	)
	if err != nil {
		return errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (repo *submissionRepository) GetTaskSubmissions(taskID int) ([]submission.Submission, error) {
	subs := []submission.Submission{}
	err := repo.db.Select(&subs,
		`SELECT * FROM submission WHERE task_id = $1`,
		taskID,
	)
	return subs, errors.Wrap(err, "listing task submissions")
}

func (repo *submissionRepository) GetStudentSubmissions(classroomID, studentID int) ([]submission.Submission, error) {
	subs := []submission.Submission{}
	err := repo.db.Select(&subs,
		`SELECT s.*
		 FROM submission s
		 JOIN task t ON t.id = s.task_id
		 WHERE t.classroom_id = $1 AND s.student_id = $2`,
		classroomID, studentID,
	)
	return subs, errors.Wrap(err, "listing student submissions")
}

func (repo *submissionRepository) CreateSubmissionFile(f *submission.SubmissionFile) error {
	err := repo.db.QueryRowx(
		`INSERT INTO submission_file (submission_id, name, url, content_type, size)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		f.SubmissionID, f.Name, f.URL, f.ContentType, f.Size,
	).Scan(&f.ID, &f.CreatedAt)
	return errors.Wrap(err, "creating submission file")
}

func (repo *submissionRepository) GetSubmissionFiles(submissionID int) ([]submission.SubmissionFile, error) {
	files := []submission.SubmissionFile{}
	err := repo.db.Select(&files,
		`SELECT * FROM submission_file WHERE submission_id = $1 ORDER BY created_at`,
		submissionID,
	)
	return files, errors.Wrap(err, "listing submission files")
}

func (repo *submissionRepository) DeleteSubmissionFiles(submissionID int) error {
	_, err := repo.db.Exec(`DELETE FROM submission_file WHERE submission_id = $1`, submissionID)
	return errors.Wrap(err, "deleting submission files")
}
