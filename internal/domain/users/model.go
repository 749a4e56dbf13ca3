package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string  `gorm:"not null;uniqueIndex:idx_users_username" json:"username"`
	Password     *string `gorm:"" json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`
	Role         Role    `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Identity returns the request identity for an authenticated user.
func (u User) Identity() *Identity {
	return &Identity{ID: u.ID, Role: u.Role}
}

type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SigninInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RoleInput struct {
	Role Role `json:"role" validate:"required,oneof=USER ADMIN EDITOR"`
}
