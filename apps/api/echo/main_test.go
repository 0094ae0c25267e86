package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/submission"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
	"github.com/taskit/backend/storage/database/dummy"
	"github.com/taskit/backend/storage/uploads"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

const testPassword = "flotilla-navigator-52"

type testApp struct {
	t      *testing.T
	server *Server
}

func newTestApp(t *testing.T) *testApp {
	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	roomRepo := dummydb.NewClassroomRepository(db)
	taskRepo := dummydb.NewTaskRepository(db)
	subRepo := dummydb.NewSubmissionRepository(db)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := &core.Config{
		Debug:      true,
		TestMode:   true,
		SessionTTL: 30 * 24 * time.Hour,
		Uploads: core.UploadsConfig{
			Root:    t.TempDir(),
			BaseURL: "/uploads",
		},
	}
	files := uploads.NewStore(conf)

	usrSvc := user.NewService(usrRepo, validate, conf.SessionTTL)
	roomSvc := classroom.NewService(roomRepo, usrRepo, validate)
	taskSvc := task.NewService(taskRepo, roomSvc, files, validate)
	subSvc := submission.NewService(subRepo, taskSvc, roomSvc, files, validate)

	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        nopLogger{},
		UserSvc:       usrSvc,
		ClassroomSvc:  roomSvc,
		TaskSvc:       taskSvc,
		SubmissionSvc: subSvc,
		Validate:      validate,
		Translator:    translator,
	})
	return &testApp{t: t, server: server}
}

// postForm submits a form-encoded POST the way a browser form would.
func (a *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	name    string
	content string
}

// postMultipart submits a multipart form carrying the given fields and
// file attachments under the "files" field.
func (a *testApp) postMultipart(path string, fields url.Values, files []formFile, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, vals := range fields {
		for _, val := range vals {
			if err := w.WriteField(key, val); err != nil {
				a.t.Fatalf("postMultipart(): %v", err)
			}
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(uploadsFormField, f.name)
		if err != nil {
			a.t.Fatalf("postMultipart(): %v", err)
		}
		if _, err = io.WriteString(part, f.content); err != nil {
			a.t.Fatalf("postMultipart(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		a.t.Fatalf("postMultipart(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the API and returns their session
// cookie.
func (a *testApp) signup(role, firstName, lastName, idNumber string) *http.Cookie {
	rec := a.postForm("/signup", url.Values{
		"firstName":       {firstName},
		"lastName":        {lastName},
		"idNumber":        {idNumber},
		"password":        {testPassword},
		"confirmPassword": {testPassword},
		"role":            {role},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		a.t.Fatalf("signup(%s): code = %d; body %s", idNumber, rec.Code, rec.Body.String())
	}
	cookie := sessionCookieFrom(rec)
	if cookie == nil {
		a.t.Fatalf("signup(%s): no session cookie set", idNumber)
	}
	return cookie
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decodeBody(): %v; body %s", err, rec.Body.String())
	}
	return body
}

// idFromLocation extracts the trailing resource id from a redirect
// Location like /teacher/classrooms/3 or /teacher/tasks/5/edit.
func idFromLocation(t *testing.T, rec *httptest.ResponseRecorder, prefix, suffix string) string {
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, prefix) || !strings.HasSuffix(loc, suffix) {
		t.Fatalf("Location = %q; want %s<id>%s", loc, prefix, suffix)
	}
	return strings.TrimSuffix(strings.TrimPrefix(loc, prefix), suffix)
}
