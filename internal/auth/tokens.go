package auth

import (
	"fmt"
	"time"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/golang-jwt/jwt/v5"
)

const msgInvalidToken = "Invalid or expired token"

// Tokens issues and verifies the HS256 bearer tokens handed out at sign-in.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(u users.User) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the identity it carries. Any failure is
// reported as Unauthenticated.
func (t *Tokens) Parse(raw string) (*users.Identity, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated(msgInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticated(msgInvalidToken)
	}

	userID, _ := claims["user_id"].(string)
	rawRole, _ := claims["role"].(string)
	role, ok := users.ParseRole(rawRole)
	if userID == "" || !ok {
		return nil, apperr.Unauthenticated(msgInvalidToken)
	}
	return &users.Identity{ID: userID, Role: role}, nil
}
