package access

import (
	"fmt"

	"musical-catalog/internal/domain/users"
)

// VisibilityRule decides whether an identity may see unreleased musicals.
// It is the only place that rule lives; CanReadEntry and CanListUnreleased
// both consult it.
type VisibilityRule func(id *users.Identity) bool

const (
	RuleAuthenticated = "authenticated"
	RuleAdmin         = "admin"
)

// AnyAuthenticated lets every signed-in identity see unreleased musicals.
func AnyAuthenticated(id *users.Identity) bool {
	return id.Authenticated()
}

// AdminOnly restricts unreleased musicals to admins.
func AdminOnly(id *users.Identity) bool {
	return id.IsAdmin()
}

// RuleFor resolves a configured rule name.
func RuleFor(name string) (VisibilityRule, error) {
	switch name {
	case RuleAuthenticated, "":
		return AnyAuthenticated, nil
	case RuleAdmin:
		return AdminOnly, nil
	default:
		return nil, fmt.Errorf("unknown unreleased visibility rule %q", name)
	}
}
