package gormstore

import (
	"context"
	"errors"
	"strings"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const msgUserNotFound = "User not found"

// Users persists accounts.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) FindByID(ctx context.Context, id string) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return s.first(ctx, "id = ?", id)
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Users) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return s.first(ctx, "google_sub = ?", sub)
}

func (s *Users) first(ctx context.Context, cond string, arg any) (*users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Where(cond, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, apperr.Internal("load user", err)
	}
	return &u, nil
}

func (s *Users) Create(ctx context.Context, u *users.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("Username already exists")
		}
		return apperr.Internal("create user", err)
	}
	return nil
}

func (s *Users) List(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return out, nil
}

func (s *Users) UpdateRole(ctx context.Context, id string, role users.Role) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFound(msgUserNotFound)
	}
	res := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return apperr.Internal("update user role", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgUserNotFound)
	}
	return nil
}

// LinkGoogle attaches a Google subject to an existing account.
func (s *Users) LinkGoogle(ctx context.Context, id, sub string) error {
	res := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("google_sub", sub)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return apperr.Conflict("Google account already linked")
		}
		return apperr.Internal("link google account", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgUserNotFound)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value")
}
