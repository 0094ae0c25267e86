package submission

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

type fakeRepository struct {
	mu          sync.Mutex
	submissions map[int]Submission
	files       map[int]SubmissionFile
	subPK       int
	filePK      int
}

var _ Repository = (*fakeRepository)(nil) // interface compliance check

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		submissions: make(map[int]Submission),
		files:       make(map[int]SubmissionFile),
	}
}

func (repo *fakeRepository) CreateSubmission(s *Submission) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, sub := range repo.submissions {
		if sub.TaskID == s.TaskID && sub.StudentID == s.StudentID {
			return errors.New("duplicate submission")
		}
	}
	repo.subPK++
	s.ID = repo.subPK
	repo.submissions[s.ID] = *s
	return nil
}

func (repo *fakeRepository) GetSubmission(taskID, studentID int) (Submission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, sub := range repo.submissions {
		if sub.TaskID == taskID && sub.StudentID == studentID {
			return sub, nil
		}
	}
	return Submission{}, ErrNotFound
}

func (repo *fakeRepository) UpdateSubmission(s Submission) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.submissions[s.ID]; !ok {
		return ErrNotFound
	}
	repo.submissions[s.ID] = s
	return nil
}

func (repo *fakeRepository) GetTaskSubmissions(taskID int) ([]Submission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var subs []Submission
	for _, sub := range repo.submissions {
		if sub.TaskID == taskID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (repo *fakeRepository) GetStudentSubmissions(classroomID, studentID int) ([]Submission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	// the fake keeps a single classroom; classroomID is not modeled
	var subs []Submission
	for _, sub := range repo.submissions {
		if sub.StudentID == studentID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (repo *fakeRepository) CreateSubmissionFile(f *SubmissionFile) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.filePK++
	f.ID = repo.filePK
	repo.files[f.ID] = *f
	return nil
}

func (repo *fakeRepository) GetSubmissionFiles(submissionID int) ([]SubmissionFile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var files []SubmissionFile
	for _, f := range repo.files {
		if f.SubmissionID == submissionID {
			files = append(files, f)
		}
	}
	return files, nil
}

func (repo *fakeRepository) DeleteSubmissionFiles(submissionID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, f := range repo.files {
		if f.SubmissionID == submissionID {
			delete(repo.files, id)
		}
	}
	return nil
}

// fakeTaskGuard authorizes a fixed task for a fixed teacher and roster.
type fakeTaskGuard struct {
	taskID      int
	classroomID int
	teacherID   int
	studentIDs  []int
}

func (g *fakeTaskGuard) GetForTeacher(teacher user.User, id int) (task.Task, []task.TaskFile, error) {
	if id != g.taskID || teacher.ID != g.teacherID {
		return task.Task{}, nil, task.ErrNotFound
	}
	return task.Task{ID: id, ClassroomID: g.classroomID}, nil, nil
}

func (g *fakeTaskGuard) GetForStudent(student user.User, id int) (task.Task, []task.TaskFile, error) {
	if id != g.taskID {
		return task.Task{}, nil, task.ErrNotFound
	}
	for _, sid := range g.studentIDs {
		if sid == student.ID {
			return task.Task{ID: id, ClassroomID: g.classroomID}, nil, nil
		}
	}
	return task.Task{}, nil, task.ErrNotFound
}

func (g *fakeTaskGuard) ListStudents(teacher user.User, classroomID int) ([]user.User, error) {
	students := make([]user.User, 0, len(g.studentIDs))
	for _, sid := range g.studentIDs {
		students = append(students, user.User{ID: sid, Role: user.RoleStudent})
	}
	return students, nil
}

type fakeFileStore struct {
	saved []string
}

var _ core.FileStore = (*fakeFileStore)(nil)

func (fs *fakeFileStore) Save(kind string, ownerID int, up core.FileUpload) (core.SavedFile, error) {
	fs.saved = append(fs.saved, up.Name)
	return core.SavedFile{
		Name:        up.Name,
		URL:         fmt.Sprintf("/uploads/%s/%d/%s", kind, ownerID, up.Name),
		ContentType: up.ContentType,
		Size:        up.Size,
	}, nil
}

func (fs *fakeFileStore) DeleteAll(kind string, ownerID int) error { return nil }

var (
	testTeacher = user.User{ID: 1, Role: user.RoleTeacher}
	testStudent = user.User{ID: 3, Role: user.RoleStudent}

	testTaskID = 20
)

func newTestService(t *testing.T) (*Service, *fakeRepository) {
	t.Helper()

	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	repo := newFakeRepository()
	guard := &fakeTaskGuard{
		taskID:      testTaskID,
		classroomID: 10,
		teacherID:   testTeacher.ID,
		studentIDs:  []int{testStudent.ID},
	}
	return NewService(repo, guard, guard, &fakeFileStore{}, validate), repo
}

func upload(name, content string) core.FileUpload {
	return core.FileUpload{
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func TestServiceSubmit(t *testing.T) {
	svc, repo := newTestService(t)

	sub, err := svc.Submit(testStudent, testTaskID, []core.FileUpload{
		upload("part1.pdf", "first half"),
		upload("part2.pdf", "second half"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !sub.SubmittedAt.Valid || sub.Grade.Valid {
		t.Errorf("Submit() = %+v, want submitted-at set and grade null", sub)
	}
	files, _ := repo.GetSubmissionFiles(sub.ID)
	if len(files) != 2 {
		t.Errorf("file rows = %d, want 2", len(files))
	}
	if len(repo.submissions) != 1 {
		t.Errorf("submission rows = %d, want 1", len(repo.submissions))
	}
}

func TestServiceSubmitValidation(t *testing.T) {
	svc, _ := newTestService(t)

	// first submission needs at least one non-empty file
	var vErr *core.ValidationError
	if _, err := svc.Submit(testStudent, testTaskID, nil); !errors.As(err, &vErr) {
		t.Errorf("no files error = %v, want ValidationError", err)
	}
	if _, err := svc.Submit(testStudent, testTaskID, []core.FileUpload{upload("empty.txt", "")}); !errors.As(err, &vErr) {
		t.Errorf("all-empty files error = %v, want ValidationError", err)
	}

	// strangers and bogus tasks get the same not-found
	stranger := user.User{ID: 99, Role: user.RoleStudent}
	if _, err := svc.Submit(stranger, testTaskID, []core.FileUpload{upload("a.txt", "x")}); errors.Cause(err) != ErrNotFound {
		t.Errorf("unenrolled Submit() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Submit(testStudent, 404, []core.FileUpload{upload("a.txt", "x")}); errors.Cause(err) != ErrNotFound {
		t.Errorf("missing task Submit() error = %v, want ErrNotFound", err)
	}
}

func TestServiceResubmit(t *testing.T) {
	svc, repo := newTestService(t)

	sub, err := svc.Submit(testStudent, testTaskID, []core.FileUpload{
		upload("part1.pdf", "first half"),
		upload("part2.pdf", "second half"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// teacher grades it
	if _, err = svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: "85"}); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	graded, _ := repo.GetSubmission(testTaskID, testStudent.ID)
	if got := graded.Grade.Int; got != 85 || graded.Status() != StatusGraded {
		t.Fatalf("grade = %d status = %q, want 85 graded", got, graded.Status())
	}

	// resubmission with a new file voids the grade and replaces the set
	resub, err := svc.Submit(testStudent, testTaskID, []core.FileUpload{upload("final.pdf", "all of it")})
	if err != nil {
		t.Fatalf("resubmit error = %v", err)
	}
	if resub.ID != sub.ID {
		t.Errorf("resubmit created a second row: %d != %d", resub.ID, sub.ID)
	}
	if resub.Grade.Valid {
		t.Error("grade not reset on resubmission")
	}
	files, _ := repo.GetSubmissionFiles(sub.ID)
	if len(files) != 1 || files[0].Name != "final.pdf" {
		t.Errorf("files = %+v, want the single new file", files)
	}

	// resubmitting without files keeps the old set but still resets state
	if _, err = svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: "90"}); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	resub, err = svc.Submit(testStudent, testTaskID, nil)
	if err != nil {
		t.Fatalf("fileless resubmit error = %v", err)
	}
	if resub.Grade.Valid {
		t.Error("grade not reset on fileless resubmission")
	}
	files, _ = repo.GetSubmissionFiles(sub.ID)
	if len(files) != 1 {
		t.Errorf("files = %d after fileless resubmit, want 1", len(files))
	}
}

func TestServiceGrade(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Submit(testStudent, testTaskID, []core.FileUpload{upload("a.pdf", "x")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	grade := func(g string) error {
		_, err := svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: g})
		return err
	}

	// bounds are inclusive
	if err := grade("0"); err != nil {
		t.Errorf("grade 0 error = %v", err)
	}
	if err := grade("100"); err != nil {
		t.Errorf("grade 100 error = %v", err)
	}

	var vErr *core.ValidationError
	for _, g := range []string{"101", "-1", "12.5", "ninety"} {
		if err := grade(g); !errors.As(err, &vErr) {
			t.Errorf("grade %q error = %v, want ValidationError", g, err)
		}
	}
	if err := grade(""); err == nil {
		t.Error("empty grade accepted")
	}

	// only the owning teacher may grade
	other := user.User{ID: 42, Role: user.RoleTeacher}
	if _, err := svc.Grade(other, testTaskID, testStudent.ID, GradeSubmission{Grade: "50"}); errors.Cause(err) != ErrNotFound {
		t.Errorf("foreign Grade() error = %v, want ErrNotFound", err)
	}
}

func TestServiceGradeUnsubmitted(t *testing.T) {
	svc, repo := newTestService(t)

	// no submission row at all
	if _, err := svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: "50"}); errors.Cause(err) != ErrNotFound {
		t.Errorf("missing submission Grade() error = %v, want ErrNotFound", err)
	}

	// a placeholder row without submitted-at cannot be graded either
	sub := Submission{TaskID: testTaskID, StudentID: testStudent.ID, CreatedAt: time.Now()}
	if err := repo.CreateSubmission(&sub); err != nil {
		t.Fatalf("CreateSubmission() error = %v", err)
	}
	if _, err := svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: "50"}); errors.Cause(err) != ErrNotFound {
		t.Errorf("unsubmitted Grade() error = %v, want ErrNotFound", err)
	}
}

func TestServiceListForTask(t *testing.T) {
	svc, _ := newTestService(t)

	// before anything is handed in the sheet still lists the roster
	rows, err := svc.ListForTask(testTeacher, testTaskID)
	if err != nil {
		t.Fatalf("ListForTask() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Status != StatusDue || rows[0].Submission != nil {
		t.Fatalf("rows = %+v, want one due row", rows)
	}

	if _, err = svc.Submit(testStudent, testTaskID, []core.FileUpload{upload("a.pdf", "x")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	rows, err = svc.ListForTask(testTeacher, testTaskID)
	if err != nil {
		t.Fatalf("ListForTask() error = %v", err)
	}
	if rows[0].Status != StatusSubmitted || rows[0].Submission == nil || len(rows[0].Files) != 1 {
		t.Errorf("rows = %+v, want a submitted row with one file", rows)
	}

	if _, err = svc.Grade(testTeacher, testTaskID, testStudent.ID, GradeSubmission{Grade: "70"}); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	rows, _ = svc.ListForTask(testTeacher, testTaskID)
	if rows[0].Status != StatusGraded {
		t.Errorf("status = %q, want graded", rows[0].Status)
	}
}

func TestServiceStatusesForClassroom(t *testing.T) {
	svc, _ := newTestService(t)

	statuses, err := svc.StatusesForClassroom(testStudent, 10)
	if err != nil {
		t.Fatalf("StatusesForClassroom() error = %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("statuses = %v, want none", statuses)
	}

	if _, err = svc.Submit(testStudent, testTaskID, []core.FileUpload{upload("a.pdf", "x")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	statuses, _ = svc.StatusesForClassroom(testStudent, 10)
	if statuses[testTaskID] != StatusSubmitted {
		t.Errorf("status = %q, want submitted", statuses[testTaskID])
	}
}
