package user

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrIDNumberExists       = errors.New("a user with this ID number already exists")
	ErrNoSession            = errors.New("no active session")
	ErrAuthenticationFailed = errors.New("incorrect ID number or password")
)

type Repository interface {
	CheckIDNumberUniqueness(idNumber string) error
	CreateUserWithSession(u *User, s *Session) error
	GetUserByID(id int) (User, error)
	GetUserByIDNumber(idNumber string) (User, error)
	UpdateUser(u User) error
	CreateSession(s *Session) error
	GetSessionByTokenHash(hash string) (Session, error)
	DeleteSession(id int) error
	DeleteSessionByTokenHash(hash string) error
}

type Service struct {
	repo       Repository
	validate   *validator.Validate
	sessionTTL time.Duration
}

func NewService(repo Repository, validate *validator.Validate, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		sessionTTL: sessionTTL,
	}
}

// Signup registers a new account and opens its first session atomically.
// It returns the created user, the raw session token and its expiry.
func (svc *Service) Signup(data Signup) (User, string, time.Time, error) {
	if err := data.Validate(svc); err != nil {
		return User{}, "", time.Time{}, err
	}
	if err := svc.repo.CheckIDNumberUniqueness(data.IDNumber); err != nil {
		return User{}, "", time.Time{}, err
	}

	usr := User{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		IDNumber:  data.IDNumber,
		Role:      data.Role,
		CreatedAt: time.Now(),
	}
	if err := usr.SetPassword(data.Password); err != nil {
		return User{}, "", time.Time{}, err
	}

	token, err := NewSessionToken()
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	sess := Session{
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().Add(svc.sessionTTL),
		CreatedAt: time.Now(),
	}
	if err := svc.repo.CreateUserWithSession(&usr, &sess); err != nil {
		return User{}, "", time.Time{}, err
	}
	return usr, token, sess.ExpiresAt, nil
}

// Login verifies credentials and opens a new session. Unknown ID numbers
// and bad passwords are indistinguishable to the caller.
func (svc *Service) Login(data Login) (User, string, time.Time, error) {
	if err := data.Validate(svc); err != nil {
		return User{}, "", time.Time{}, err
	}

	usr, err := svc.repo.GetUserByIDNumber(data.IDNumber)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, "", time.Time{}, ErrAuthenticationFailed
		}
		return User{}, "", time.Time{}, err
	}
	if !usr.CheckPassword(data.Password) {
		return User{}, "", time.Time{}, ErrAuthenticationFailed
	}

	token, err := NewSessionToken()
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	sess := Session{
		UserID:    usr.ID,
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().Add(svc.sessionTTL),
		CreatedAt: time.Now(),
	}
	if err = svc.repo.CreateSession(&sess); err != nil {
		return User{}, "", time.Time{}, err
	}
	return usr, token, sess.ExpiresAt, nil
}

// Authenticate resolves a bearer token to its user. Expired sessions are
// deleted on sight so the table does not accumulate stale rows.
func (svc *Service) Authenticate(token string) (User, error) {
	if token == "" {
		return User{}, ErrNoSession
	}
	sess, err := svc.repo.GetSessionByTokenHash(HashToken(token))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrNoSession
		}
		return User{}, err
	}
	if sess.Expired(time.Now()) {
		_ = svc.repo.DeleteSession(sess.ID) // best effort
		return User{}, ErrNoSession
	}
	usr, err := svc.repo.GetUserByID(sess.UserID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrNoSession
		}
		return User{}, err
	}
	return usr, nil
}

// Logout invalidates the session behind token. A missing session is not
// an error; logout is idempotent.
func (svc *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return svc.repo.DeleteSessionByTokenHash(HashToken(token))
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

// UpdateProfile applies data to usr. Changing the ID number re-checks
// uniqueness; the role is immutable.
func (svc *Service) UpdateProfile(usr User, data UpdateProfile) (User, error) {
	if err := data.Validate(svc); err != nil {
		return usr, err
	}
	if data.IDNumber != usr.IDNumber {
		if err := svc.repo.CheckIDNumberUniqueness(data.IDNumber); err != nil {
			return usr, err
		}
	}
	usr.FirstName = data.FirstName
	usr.LastName = data.LastName
	usr.IDNumber = data.IDNumber
	usr.PhoneNumber = null.NewString(data.PhoneNumber, data.PhoneNumber != "")
	if err := svc.repo.UpdateUser(usr); err != nil {
		return usr, err
	}
	return usr, nil
}
