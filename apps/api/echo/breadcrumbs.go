package echoapi

import (
	"fmt"

	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

// Crumb is one link in the navigation trail shown on every page.
type Crumb struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

func homeCrumb(usr user.User) Crumb {
	return Crumb{Label: "Home", Href: roleHome(usr)}
}

func classroomCrumb(usr user.User, room classroom.Classroom) Crumb {
	return Crumb{
		Label: room.Name,
		Href:  fmt.Sprintf("%s/classrooms/%d", roleHome(usr), room.ID),
	}
}

func taskCrumb(usr user.User, tsk task.Task) Crumb {
	href := fmt.Sprintf("/student/tasks/%d", tsk.ID)
	if usr.IsTeacher() {
		href = fmt.Sprintf("/teacher/tasks/%d/edit", tsk.ID)
	}
	return Crumb{Label: tsk.Title, Href: href}
}

// breadcrumbsForClassroom is the trail for a classroom page; ownership
// was already checked by the caller.
func breadcrumbsForClassroom(usr user.User, room classroom.Classroom) []Crumb {
	return []Crumb{homeCrumb(usr), classroomCrumb(usr, room)}
}

func breadcrumbsForTask(usr user.User, room classroom.Classroom, tsk task.Task) []Crumb {
	return append(breadcrumbsForClassroom(usr, room), taskCrumb(usr, tsk))
}
