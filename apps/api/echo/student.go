package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/submission"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

type studentApi struct {
	users       *user.Service
	classrooms  *classroom.Service
	tasks       *task.Service
	submissions *submission.Service
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{
		users:       deps.UserSvc,
		classrooms:  deps.ClassroomSvc,
		tasks:       deps.TaskSvc,
		submissions: deps.SubmissionSvc,
	}

	g.GET("", api.dashboard)
	g.POST("/profile", api.updateProfile)

	g.POST("/classrooms/join", api.joinClassroom)
	cg := g.Group("/classrooms/:id")
	cg.GET("", api.retrieveClassroom)
	cg.POST("/leave", api.leaveClassroom)

	tg := g.Group("/tasks/:id")
	tg.GET("", api.retrieveTask)
	tg.POST("/submit", api.submitTask)
}

// Handlers

func (api *studentApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rooms, err := api.classrooms.ListForStudent(usr)
	if err != nil {
		return errors.Wrap(err, "listing classrooms")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"user":        usr,
		"classrooms":  rooms,
		"breadcrumbs": []Crumb{homeCrumb(usr)},
	})
}

func (api *studentApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if _, err = api.users.UpdateProfile(usr, data); err != nil {
		if errors.Cause(err) == user.ErrIDNumberExists {
			return core.NewConflictError(user.ErrIDNumberExists, data.Values())
		}
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/student")
}

func (api *studentApi) joinClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data classroom.JoinClassroom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClassroom")
	}
	room, err := api.classrooms.Join(usr, data)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/student/classrooms/%d", room.ID))
}

func (api *studentApi) leaveClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.classrooms.Leave(usr, id); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/student")
}

func (api *studentApi) retrieveClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	room, err := api.classrooms.GetForStudent(usr, id)
	if err != nil {
		return err
	}
	tasks, err := api.tasks.ListForStudent(usr, id)
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	statuses, err := api.submissions.StatusesForClassroom(usr, id)
	if err != nil {
		return errors.Wrap(err, "deriving statuses")
	}

	type taskRow struct {
		task.Task
		DueDate string `json:"due_date"`
		Status  string `json:"status"`
	}
	rows := make([]taskRow, 0, len(tasks))
	for _, tsk := range tasks {
		status, ok := statuses[tsk.ID]
		if !ok {
			status = submission.StatusDue
		}
		rows = append(rows, taskRow{Task: tsk, DueDate: tsk.DueDate(), Status: status})
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"classroom":   room,
		"tasks":       rows,
		"breadcrumbs": breadcrumbsForClassroom(usr, room),
	})
}

func (api *studentApi) retrieveTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	tsk, files, err := api.tasks.GetForStudent(usr, id)
	if err != nil {
		return err
	}
	room, err := api.classrooms.GetForStudent(usr, tsk.ClassroomID)
	if err != nil {
		return err
	}
	sub, subFiles, err := api.submissions.GetForStudent(usr, id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"task":             tsk,
		"dueDate":          tsk.DueDate(),
		"files":            files,
		"submission":       sub,
		"submission_files": subFiles,
		"status":           sub.Status(),
		"breadcrumbs":      breadcrumbsForTask(usr, room, tsk),
	})
}

func (api *studentApi) submitTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	uploads, closeUploads, err := formUploads(ctx)
	if err != nil {
		return err
	}
	defer closeUploads()

	if _, err = api.submissions.Submit(usr, id, uploads); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/student/tasks/%d", id))
}
