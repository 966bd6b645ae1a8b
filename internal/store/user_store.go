package store

import (
	"context"
)

// UserStore persists user identity records.
type UserStore struct {
	db *DB
}

// NewUserStore creates a UserStore backed by the given database.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. A unique-index violation on email is returned
// as gorm.ErrDuplicatedKey, which callers translate to a conflict.
func (s *UserStore) Create(ctx context.Context, user *User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// FindByEmail returns the user with the given email, or (nil, nil) if no
// such user exists. The email is matched exactly as stored.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
