package users

import (
	"time"

	"musical-catalog/internal/domain/users"
)

type UserDTO struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Role         users.Role `json:"role"`
	AuthProvider string     `json:"authProvider"`
	GoogleLinked bool       `json:"googleLinked"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CapabilitiesDTO tells the client which catalog actions to offer.
type CapabilitiesDTO struct {
	CanWrite         bool `json:"canWrite"`
	CanSeeUnreleased bool `json:"canSeeUnreleased"`
}

type MeResponse struct {
	User         UserDTO         `json:"user"`
	Capabilities CapabilitiesDTO `json:"capabilities"`
}

func NewUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		GoogleLinked: u.GoogleSub != nil,
		CreatedAt:    u.CreatedAt,
	}
}
