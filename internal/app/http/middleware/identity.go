package middleware

import (
	"strings"

	"musical-catalog/internal/api/respond"
	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenParser turns a bearer token into the identity it carries.
type TokenParser interface {
	Parse(raw string) (*users.Identity, error)
}

// Identify attaches the caller's identity when an Authorization header is
// present. Requests without one continue anonymously; a malformed or invalid
// token is rejected with 401.
func Identify(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			respond.Error(c, nil, apperr.Unauthenticated("Bearer token malformed"))
			return
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			respond.Error(c, nil, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the caller's identity, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *users.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*users.Identity)
	return id
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated() {
			respond.Error(c, nil, apperr.Unauthenticated("Please sign in to continue"))
			return
		}
		c.Next()
	}
}

func RequireRole(role users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if !id.Authenticated() {
			respond.Error(c, nil, apperr.Unauthenticated("Please sign in to continue"))
			return
		}
		if id.Role != role {
			respond.Error(c, nil, apperr.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}
