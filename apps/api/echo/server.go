package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/submission"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       *user.Service
		ClassroomSvc  *classroom.Service
		TaskSvc       *task.Service
		SubmissionSvc *submission.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.Use(sessionMiddleware(s.deps.UserSvc))

	s.app.GET("/", home)
	s.app.POST("/signup", s.signup)
	s.app.POST("/login", s.login)
	s.app.POST("/logout", s.logout)

	s.app.Static(conf.Uploads.BaseURL, conf.Uploads.Root)

	registerTeacherAPI(s.app.Group("/teacher", requireRole(user.RoleTeacher)), s.deps)
	registerStudentAPI(s.app.Group("/student", requireRole(user.RoleStudent)), s.deps)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

// signalShutdown is called by the error handler when a fatal error
// requires the server to stop.
func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Errors() <-chan error            { return s.errs }
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }
func (s *Server) Close() error                       { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	if usr, err := getContextUser(ctx); err == nil {
		return ctx.Redirect(http.StatusSeeOther, roleHome(usr))
	}
	return ctx.JSON(http.StatusOK, echo.Map{"app": "TaskIt"})
}
