package user

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/taskit/backend/core"
)

// Roles. A user is either a teacher or a student; the role is fixed at
// signup and never changes.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var Roles = []string{RoleTeacher, RoleStudent}

type User struct {
	ID           int         `json:"id" db:"id"`
	FirstName    string      `json:"first_name" db:"first_name"`
	LastName     string      `json:"last_name" db:"last_name"`
	IDNumber     string      `json:"id_number" db:"id_number"`
	PhoneNumber  null.String `json:"phone_number" db:"phone_number"`
	Role         string      `json:"role" db:"role"`
	PasswordHash string      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) SetPassword(pwd string) error {
	hash, err := MakePasswordHash(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return CheckPassword(pwd, u.PasswordHash)
}

// Session is a server-side login session. Only a one-way hash of the
// bearer token is stored; the raw token lives in the client cookie.
type Session struct {
	ID        int       `json:"-" db:"id"`
	UserID    int       `json:"-" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"-" db:"expires_at"` // UTC
	CreatedAt time.Time `json:"-" db:"created_at"` // UTC
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Signup contains information needed to register a new User.
type Signup struct {
	FirstName       string `json:"first_name" form:"firstName" validate:"required,personname"`
	LastName        string `json:"last_name" form:"lastName" validate:"required,personname"`
	IDNumber        string `json:"id_number" form:"idNumber" validate:"required,idnumber"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" form:"role" validate:"required,oneof=teacher student"`
}

func (su *Signup) Validate(svc *Service) error {
	su.FirstName = core.CleanString(su.FirstName)
	su.LastName = core.CleanString(su.LastName)
	su.IDNumber = core.CleanString(su.IDNumber)
	su.Role = core.CleanString(su.Role, true /* lower */)

	return svc.validate.Struct(su)
}

// Values returns the submitted values to echo back on failure. The
// password fields are never echoed.
func (su *Signup) Values() map[string]string {
	return map[string]string{
		"firstName": su.FirstName,
		"lastName":  su.LastName,
		"idNumber":  su.IDNumber,
		"role":      su.Role,
	}
}

type Login struct {
	IDNumber string `json:"id_number" form:"loginIdNumber" validate:"required"`
	Password string `json:"password" form:"loginPassword" validate:"required"`
}

func (l *Login) Validate(svc *Service) error {
	l.IDNumber = core.CleanString(l.IDNumber)
	return svc.validate.Struct(l)
}

func (l *Login) Values() map[string]string {
	return map[string]string{"idNumber": l.IDNumber}
}

// UpdateProfile defines what information a user may change about
// themselves. The role is immutable.
type UpdateProfile struct {
	FirstName   string `json:"first_name" form:"firstName" validate:"required,personname"`
	LastName    string `json:"last_name" form:"lastName" validate:"required,personname"`
	IDNumber    string `json:"id_number" form:"idNumber" validate:"required,idnumber"`
	PhoneNumber string `json:"phone_number" form:"phoneNumber" validate:"omitempty,phone"`
}

func (up *UpdateProfile) Validate(svc *Service) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.IDNumber = core.CleanString(up.IDNumber)
	up.PhoneNumber = core.CleanString(up.PhoneNumber)

	return svc.validate.Struct(up)
}

func (up *UpdateProfile) Values() map[string]string {
	return map[string]string{
		"firstName":   up.FirstName,
		"lastName":    up.LastName,
		"idNumber":    up.IDNumber,
		"phoneNumber": up.PhoneNumber,
	}
}
