package dummydb

import (
	"sort"

	"github.com/taskit/backend/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(s *submission.Submission) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	s.ID = repo.db.nextPK("submission")
	sub := *s
	repo.db.submissions[s.ID] = &sub
	return nil
}

func (repo *submissionRepository) GetSubmission(taskID, studentID int) (submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, sub := range repo.db.submissions {
		if sub.TaskID == taskID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) UpdateSubmission(s submission.Submission) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.submissions[s.ID]; !ok {
		return submission.ErrNotFound
	}
	repo.db.submissions[s.ID] = &s
	return nil
}

func (repo *submissionRepository) GetTaskSubmissions(taskID int) ([]submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	subs := []submission.Submission{}
	for _, sub := range repo.db.submissions {
		if sub.TaskID == taskID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *submissionRepository) GetStudentSubmissions(classroomID, studentID int) ([]submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	subs := []submission.Submission{}
	for _, sub := range repo.db.submissions {
		if sub.StudentID != studentID {
			continue
		}
		if tsk, ok := repo.db.tasks[sub.TaskID]; ok && tsk.ClassroomID == classroomID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *submissionRepository) CreateSubmissionFile(f *submission.SubmissionFile) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	f.ID = repo.db.nextPK("submission_file")
	sf := *f
	repo.db.subFiles[f.ID] = &sf
	return nil
}

func (repo *submissionRepository) GetSubmissionFiles(submissionID int) ([]submission.SubmissionFile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	files := []submission.SubmissionFile{}
	for _, f := range repo.db.subFiles {
		if f.SubmissionID == submissionID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func (repo *submissionRepository) DeleteSubmissionFiles(submissionID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, f := range repo.db.subFiles {
		if f.SubmissionID == submissionID {
			delete(repo.db.subFiles, id)
		}
	}
	return nil
}
