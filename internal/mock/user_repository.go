package mock

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// UserRepo is an in-memory port.UserRepository keyed by email.
type UserRepo struct {
	Users map[string]*model.User

	CreateErr      error
	DuplicateErr   error
	GetErr         error
	UpdateLoginErr error

	LastLoginFor uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{Users: make(map[string]*model.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, ok := r.Users[user.Email]; ok {
		if r.DuplicateErr != nil {
			return r.DuplicateErr
		}
		return errors.New("duplicate entry")
	}
	cp := *user
	r.Users[user.Email] = &cp
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	u, ok := r.Users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.LastLoginFor = id
	if r.UpdateLoginErr != nil {
		return r.UpdateLoginErr
	}
	for _, u := range r.Users {
		if u.ID == id {
			u.LastLogin = &at
		}
	}
	return nil
}
