package users

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	// RoleEditor is accepted by validation but grants nothing beyond RoleUser.
	RoleEditor Role = "EDITOR"
)

// ParseRole normalizes a role claim. Unknown values are reported as !ok.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleEditor:
		return r, true
	default:
		return "", false
	}
}

// Identity is the authenticated caller of a request. A nil *Identity is an
// anonymous caller.
type Identity struct {
	ID   string
	Role Role
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.ID != ""
}

func (i *Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == RoleAdmin
}
