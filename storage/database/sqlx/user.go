package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckIDNumberUniqueness(idNumber string) error {
	var exists bool
	err := repo.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM app_user WHERE id_number = $1)`, idNumber)
	if err != nil {
		return errors.Wrap(err, "checking ID number")
	}
	if exists {
		return user.ErrIDNumberExists
	}
	return nil
}

// CreateUserWithSession persists the signup atomically: either both the
// user and their first session commit, or neither does.
func (repo *userRepository) CreateUserWithSession(u *user.User, s *user.Session) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning signup tx")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowx(
		`INSERT INTO app_user (first_name, last_name, id_number, phone_number, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.FirstName, u.LastName, u.IDNumber, u.PhoneNumber, u.Role, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "app_user_id_number_key") {
			return user.ErrIDNumberExists
		}
		return errors.Wrap(err, "creating user")
	}

	s.UserID = u.ID
	err = tx.QueryRowx(
		`INSERT INTO session (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.TokenHash, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}

	return errors.Wrap(tx.Commit(), "committing signup tx")
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM app_user WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user")
}

func (repo *userRepository) GetUserByIDNumber(idNumber string) (user.User, error) {
	var usr user.User
	err := repo.db.Get(&usr, `SELECT * FROM app_user WHERE id_number = $1`, idNumber)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by ID number")
}

func (repo *userRepository) UpdateUser(u user.User) error {
	res, err := repo.db.Exec(
		`UPDATE app_user
		 SET first_name = $1, last_name = $2, id_number = $3, phone_number = $4, password_hash = $5
		 WHERE id = $6`,
		u.FirstName, u.LastName, u.IDNumber, u.PhoneNumber, u.PasswordHash, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "app_user_id_number_key") {
			return user.ErrIDNumberExists
		}
		return errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) CreateSession(s *user.Session) error {
	err := repo.db.QueryRowx(
		`INSERT INTO session (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.TokenHash, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
	return errors.Wrap(err, "creating session")
}

func (repo *userRepository) GetSessionByTokenHash(hash string) (user.Session, error) {
	var sess user.Session
	err := repo.db.Get(&sess, `SELECT * FROM session WHERE token_hash = $1`, hash)
	if err == sql.ErrNoRows {
		return user.Session{}, user.ErrNotFound
	}
	return sess, errors.Wrap(err, "getting session")
}

func (repo *userRepository) DeleteSession(id int) error {
	_, err := repo.db.Exec(`DELETE FROM session WHERE id = $1`, id)
	return errors.Wrap(err, "deleting session")
}

func (repo *userRepository) DeleteSessionByTokenHash(hash string) error {
	_, err := repo.db.Exec(`DELETE FROM session WHERE token_hash = $1`, hash)
	return errors.Wrap(err, "deleting session")
}
