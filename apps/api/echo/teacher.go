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

type teacherApi struct {
	users       *user.Service
	classrooms  *classroom.Service
	tasks       *task.Service
	submissions *submission.Service
}

func registerTeacherAPI(g *echo.Group, deps ServerDeps) {
	api := teacherApi{
		users:       deps.UserSvc,
		classrooms:  deps.ClassroomSvc,
		tasks:       deps.TaskSvc,
		submissions: deps.SubmissionSvc,
	}

	g.GET("", api.dashboard)
	g.POST("/profile", api.updateProfile)

	g.POST("/classrooms", api.createClassroom)
	cg := g.Group("/classrooms/:id")
	cg.GET("", api.retrieveClassroom)
	cg.POST("/rename", api.renameClassroom)
	cg.POST("/delete", api.deleteClassroom)
	cg.POST("/students", api.addStudent)
	cg.POST("/students/:studentID/remove", api.removeStudent)
	cg.POST("/tasks", api.createTask)

	tg := g.Group("/tasks/:id")
	tg.GET("/edit", api.editTask)
	tg.POST("", api.saveTask)
	tg.POST("/rename", api.renameTask)
	tg.POST("/delete", api.deleteTask)
	tg.GET("/review", api.reviewTask)
	tg.POST("/grade/:studentID", api.gradeSubmission)
}

// Handlers

func (api *teacherApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rooms, err := api.classrooms.ListForTeacher(usr)
	if err != nil {
		return errors.Wrap(err, "listing classrooms")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"user":        usr,
		"classrooms":  rooms,
		"breadcrumbs": []Crumb{homeCrumb(usr)},
	})
}

func (api *teacherApi) updateProfile(ctx echo.Context) error {
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
	return ctx.Redirect(http.StatusSeeOther, "/teacher")
}

func (api *teacherApi) createClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data classroom.CreateClassroom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateClassroom")
	}
	room, err := api.classrooms.Create(usr, data)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", room.ID))
}

func (api *teacherApi) retrieveClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	room, err := api.classrooms.GetForTeacher(usr, id)
	if err != nil {
		return err
	}
	students, err := api.classrooms.ListStudents(usr, id)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	tasks, err := api.tasks.ListForTeacher(usr, id)
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"classroom":   room,
		"students":    students,
		"tasks":       tasks,
		"breadcrumbs": breadcrumbsForClassroom(usr, room),
	})
}

func (api *teacherApi) renameClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data classroom.RenameClassroom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameClassroom")
	}
	if _, err = api.classrooms.Rename(usr, id, data); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", id))
}

func (api *teacherApi) deleteClassroom(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.classrooms.Delete(usr, id); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/teacher")
}

func (api *teacherApi) addStudent(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data classroom.AddStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddStudent")
	}
	if _, err = api.classrooms.AddStudent(usr, id, data); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", id))
}

func (api *teacherApi) removeStudent(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentID")
	if err != nil {
		return err
	}
	if err = api.classrooms.RemoveStudent(usr, id, studentID); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", id))
}

func (api *teacherApi) createTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	tsk, err := api.tasks.Create(usr, id)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/tasks/%d/edit", tsk.ID))
}

func (api *teacherApi) editTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	tsk, files, err := api.tasks.GetForTeacher(usr, id)
	if err != nil {
		return err
	}
	room, err := api.classrooms.GetForTeacher(usr, tsk.ClassroomID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"task":        tsk,
		"dueDate":     tsk.DueDate(),
		"files":       files,
		"breadcrumbs": breadcrumbsForTask(usr, room, tsk),
	})
}

func (api *teacherApi) saveTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data task.SaveTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveTask")
	}
	uploads, closeUploads, err := formUploads(ctx)
	if err != nil {
		return err
	}
	defer closeUploads()

	tsk, err := api.tasks.Save(usr, id, data, uploads)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", tsk.ClassroomID))
}

func (api *teacherApi) renameTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data task.RenameTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameTask")
	}
	tsk, err := api.tasks.Rename(usr, id, data)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", tsk.ClassroomID))
}

func (api *teacherApi) deleteTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	tsk, _, err := api.tasks.GetForTeacher(usr, id)
	if err != nil {
		return err
	}
	if err = api.tasks.Delete(usr, id); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/classrooms/%d", tsk.ClassroomID))
}

func (api *teacherApi) reviewTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	tsk, _, err := api.tasks.GetForTeacher(usr, id)
	if err != nil {
		return err
	}
	room, err := api.classrooms.GetForTeacher(usr, tsk.ClassroomID)
	if err != nil {
		return err
	}
	rows, err := api.submissions.ListForTask(usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"task":        tsk,
		"submissions": rows,
		"breadcrumbs": breadcrumbsForTask(usr, room, tsk),
	})
}

func (api *teacherApi) gradeSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := intParam(ctx, "studentID")
	if err != nil {
		return err
	}
	var data submission.GradeSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if _, err = api.submissions.Grade(usr, id, studentID, data); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/teacher/tasks/%d/review", id))
}
