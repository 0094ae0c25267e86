package dummydb

import (
	"github.com/taskit/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckIDNumberUniqueness(idNumber string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, usr := range repo.db.users {
		if usr.IDNumber == idNumber {
			return user.ErrIDNumberExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUserWithSession(u *user.User, s *user.Session) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, usr := range repo.db.users {
		if usr.IDNumber == u.IDNumber {
			return user.ErrIDNumberExists
		}
	}
	u.ID = repo.db.nextPK("app_user")
	usr := *u
	repo.db.users[u.ID] = &usr

	s.ID = repo.db.nextPK("session")
	s.UserID = u.ID
	sess := *s
	repo.db.sessions[s.ID] = &sess
	return nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return *usr, nil
}

func (repo *userRepository) GetUserByIDNumber(idNumber string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, usr := range repo.db.users {
		if usr.IDNumber == idNumber {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(u user.User) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if usr.IDNumber == u.IDNumber && usr.ID != u.ID {
			return user.ErrIDNumberExists
		}
	}
	repo.db.users[u.ID] = &u
	return nil
}

func (repo *userRepository) CreateSession(s *user.Session) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	s.ID = repo.db.nextPK("session")
	sess := *s
	repo.db.sessions[s.ID] = &sess
	return nil
}

func (repo *userRepository) GetSessionByTokenHash(hash string) (user.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, sess := range repo.db.sessions {
		if sess.TokenHash == hash {
			return *sess, nil
		}
	}
	return user.Session{}, user.ErrNotFound
}

func (repo *userRepository) DeleteSession(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.sessions, id)
	return nil
}

func (repo *userRepository) DeleteSessionByTokenHash(hash string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, sess := range repo.db.sessions {
		if sess.TokenHash == hash {
			delete(repo.db.sessions, id)
		}
	}
	return nil
}
