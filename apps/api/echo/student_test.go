package echoapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_studentApi_join_leave(t *testing.T) {
	app := newTestApp(t)
	teacher := app.signup("teacher", "Awa", "Traore", "T-700")
	student := app.signup("student", "Sekou", "Keita", "S-700")

	roomID, code := createClassroom(t, app, teacher, "History")

	t.Run("an unknown code is not found", func(t *testing.T) {
		rec := app.postForm("/student/classrooms/join", url.Values{"joinCode": {"ZZZZZZZ"}}, student)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("a malformed code fails with the values echoed", func(t *testing.T) {
		rec := app.postForm("/student/classrooms/join", url.Values{"joinCode": {"nope"}}, student)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		values, _ := body["values"].(map[string]interface{})
		assert.Equal(t, "NOPE", values["joinCode"])
	})

	t.Run("joining is case insensitive and idempotent", func(t *testing.T) {
		rec := app.postForm("/student/classrooms/join", url.Values{"joinCode": {strings.ToLower(code)}}, student)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/student/classrooms/"+roomID, rec.Header().Get("Location"))

		// joining again lands on the same classroom
		rec = app.postForm("/student/classrooms/join", url.Values{"joinCode": {code}}, student)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/student/classrooms/"+roomID, rec.Header().Get("Location"))
	})

	t.Run("dashboard names the teacher", func(t *testing.T) {
		rec := app.get("/student", student)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		rooms, _ := body["classrooms"].([]interface{})
		if assert.Len(t, rooms, 1) {
			room := rooms[0].(map[string]interface{})
			assert.Equal(t, "History", room["name"])
			assert.Equal(t, "Awa Traore", room["teacher_name"])
		}
	})

	t.Run("leaving removes access", func(t *testing.T) {
		rec := app.postForm("/student/classrooms/"+roomID+"/leave", nil, student)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/student", rec.Header().Get("Location"))

		rec = app.get("/student/classrooms/"+roomID, student)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("a stranger cannot see the classroom", func(t *testing.T) {
		stranger := app.signup("student", "Fanta", "Coulibaly", "S-701")
		rec := app.get("/student/classrooms/"+roomID, stranger)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_studentApi_taskFlow(t *testing.T) {
	app := newTestApp(t)
	teacher := app.signup("teacher", "Awa", "Traore", "T-800")
	student := app.signup("student", "Sekou", "Keita", "S-800")

	roomID, code := createClassroom(t, app, teacher, "Geography")
	taskID := createTask(t, app, teacher, roomID)

	due := time.Now().UTC().AddDate(0, 0, 3).Format("02/01/2006")
	rec := app.postForm("/teacher/tasks/"+taskID, url.Values{
		"taskName":     {"Map Quiz"},
		"instructions": {"Label every capital."},
		"dueDate":      {due},
	}, teacher)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.postForm("/student/classrooms/join", url.Values{"joinCode": {code}}, student)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	t.Run("classroom page lists the task as due", func(t *testing.T) {
		rec := app.get("/student/classrooms/"+roomID, student)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		tasks, _ := body["tasks"].([]interface{})
		if assert.Len(t, tasks, 1) {
			row := tasks[0].(map[string]interface{})
			assert.Equal(t, "Map Quiz", row["title"])
			assert.Equal(t, due, row["due_date"])
			assert.Equal(t, "due", row["status"])
		}
	})

	t.Run("task page before any submission", func(t *testing.T) {
		rec := app.get("/student/tasks/"+taskID, student)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "due", body["status"])
		assert.Nil(t, body["submission"])
	})

	t.Run("a first submission needs at least one file", func(t *testing.T) {
		rec := app.postForm("/student/tasks/"+taskID+"/submit", nil, student)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// empty files do not count
		rec = app.postMultipart("/student/tasks/"+taskID+"/submit", nil,
			[]formFile{{name: "empty.txt", content: ""}}, student)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("submitting a file", func(t *testing.T) {
		rec := app.postMultipart("/student/tasks/"+taskID+"/submit", nil,
			[]formFile{{name: "quiz.txt", content: "all the capitals"}}, student)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/student/tasks/"+taskID, rec.Header().Get("Location"))

		rec = app.get("/student/tasks/"+taskID, student)
		body := decodeBody(t, rec)
		assert.Equal(t, "submitted", body["status"])
		files, _ := body["submission_files"].([]interface{})
		if assert.Len(t, files, 1) {
			file := files[0].(map[string]interface{})
			assert.Contains(t, file["name"], "quiz.txt")
		}
	})

	t.Run("grade comes through once the teacher marks it", func(t *testing.T) {
		rec := app.get("/teacher/tasks/"+taskID+"/review", teacher)
		studentID := studentIDFromReview(t, decodeBody(t, rec))
		rec = app.postForm("/teacher/tasks/"+taskID+"/grade/"+studentID, url.Values{"grade": {"92"}}, teacher)
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		rec = app.get("/student/tasks/"+taskID, student)
		body := decodeBody(t, rec)
		assert.Equal(t, "graded", body["status"])
		sub, _ := body["submission"].(map[string]interface{})
		assert.EqualValues(t, 92, sub["grade"])

		rec = app.get("/student/classrooms/"+roomID, student)
		body = decodeBody(t, rec)
		tasks, _ := body["tasks"].([]interface{})
		if assert.Len(t, tasks, 1) {
			row := tasks[0].(map[string]interface{})
			assert.Equal(t, "graded", row["status"])
		}
	})

	t.Run("a fileless resubmission keeps the files but resets the grade", func(t *testing.T) {
		rec := app.postForm("/student/tasks/"+taskID+"/submit", nil, student)
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		rec = app.get("/student/tasks/"+taskID, student)
		body := decodeBody(t, rec)
		assert.Equal(t, "submitted", body["status"])
		files, _ := body["submission_files"].([]interface{})
		assert.Len(t, files, 1)
	})

	t.Run("a task in someone else's classroom does not exist", func(t *testing.T) {
		stranger := app.signup("student", "Fanta", "Coulibaly", "S-801")
		rec := app.get("/student/tasks/"+taskID, stranger)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.postMultipart("/student/tasks/"+taskID+"/submit", nil,
			[]formFile{{name: "sneaky.txt", content: "hi"}}, stranger)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_studentApi_profile(t *testing.T) {
	app := newTestApp(t)
	student := app.signup("student", "Sekou", "Keita", "S-900")
	app.signup("student", "Fanta", "Coulibaly", "S-901")

	rec := app.postForm("/student/profile", url.Values{
		"firstName":   {"Sekou"},
		"lastName":    {"Keita"},
		"idNumber":    {"S-900-B"},
		"phoneNumber": {"+223 70 00 00 00"},
	}, student)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get("/student", student)
	body := decodeBody(t, rec)
	usr, _ := body["user"].(map[string]interface{})
	assert.Equal(t, "S-900-B", usr["id_number"])
	assert.Equal(t, "+223 70 00 00 00", usr["phone_number"])

	t.Run("taken ID number conflicts", func(t *testing.T) {
		rec := app.postForm("/student/profile", url.Values{
			"firstName": {"Sekou"},
			"lastName":  {"Keita"},
			"idNumber":  {"S-901"},
		}, student)
		assert.Equal(t, http.StatusConflict, rec.Code)

		body := decodeBody(t, rec)
		values, _ := body["values"].(map[string]interface{})
		assert.Equal(t, "S-901", values["idNumber"])

		// nothing changed
		rec = app.get("/student", student)
		usr, _ := decodeBody(t, rec)["user"].(map[string]interface{})
		assert.Equal(t, "S-900-B", usr["id_number"])
	})
}
