// Package auth manages accounts and the bearer tokens that identify callers:
// local sign-up and sign-in, Google sign-in, the bootstrap admin and role
// administration.
package auth

import (
	"context"
	"errors"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/domain/validation"
	"musical-catalog/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgGoogleAccount      = "This account uses Google sign-in"
	msgSignIn             = "Please sign in to continue"
	msgAdminRequired      = "Admin access required"
)

// UserStore persists accounts. Lookups report a missing user as NotFound.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
	FindByUsername(ctx context.Context, username string) (*users.User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*users.User, error)
	Create(ctx context.Context, u *users.User) error
	List(ctx context.Context) ([]users.User, error)
	UpdateRole(ctx context.Context, id string, role users.Role) error
	LinkGoogle(ctx context.Context, id, sub string) error
}

type Accounts struct {
	store  UserStore
	tokens *Tokens
	log    logging.Logger
	cost   int
}

func NewAccounts(store UserStore, tokens *Tokens, log logging.Logger) *Accounts {
	if log == nil {
		log = logging.Discard()
	}
	return &Accounts{
		store:  store,
		tokens: tokens,
		log:    log.With("component", "accounts"),
		cost:   bcrypt.DefaultCost,
	}
}

// Session is a signed-in user and the token that identifies them.
type Session struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// Signup creates a USER account. The role is never taken from the request.
func (a *Accounts) Signup(ctx context.Context, in users.SignupInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hashed, err := a.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &users.User{
		Username:     in.Username,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
	}
	if err := a.store.Create(ctx, u); err != nil {
		return nil, err
	}

	a.log.Info(ctx, "user signed up", "user_id", u.ID, "username", u.Username)
	return a.session(u)
}

func (a *Accounts) Signin(ctx context.Context, in users.SigninInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := a.store.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}
	if u.Password == nil || *u.Password == "" {
		return nil, apperr.Unauthenticated(msgGoogleAccount)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}
	return a.session(u)
}

// Me loads the account behind id.
func (a *Accounts) Me(ctx context.Context, id *users.Identity) (*users.User, error) {
	if !id.Authenticated() {
		return nil, apperr.Unauthenticated(msgSignIn)
	}
	return a.store.FindByID(ctx, id.ID)
}

// EnsureAdmin creates the bootstrap admin if no account with that username
// exists. An existing account is left untouched. It reports whether an
// account was created.
func (a *Accounts) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := a.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		a.log.Info(ctx, "bootstrap admin already exists", "username", username)
		return false, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return false, err
	}

	hashed, err := a.hash(password)
	if err != nil {
		return false, err
	}
	u := &users.User{
		Username:     username,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleAdmin,
	}
	if err := a.store.Create(ctx, u); err != nil {
		return false, err
	}

	a.log.Info(ctx, "bootstrap admin created", "user_id", u.ID, "username", username)
	return true, nil
}

func (a *Accounts) ListUsers(ctx context.Context, id *users.Identity) ([]users.User, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return a.store.List(ctx)
}

// SetRole changes another user's role. Admins cannot change their own role,
// which keeps at least the acting admin in place.
func (a *Accounts) SetRole(ctx context.Context, id *users.Identity, userID string, in users.RoleInput) (*users.User, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	if role, ok := users.ParseRole(string(in.Role)); ok {
		in.Role = role
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if userID == id.ID {
		return nil, apperr.Conflict("You cannot change your own role")
	}

	if err := a.store.UpdateRole(ctx, userID, in.Role); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "user role changed", "user_id", id.ID, "target_id", userID, "role", in.Role)
	return a.store.FindByID(ctx, userID)
}

func (a *Accounts) session(u *users.User) (*Session, error) {
	token, err := a.tokens.Issue(*u)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &Session{User: u, Token: token}, nil
}

func (a *Accounts) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", apperr.Internal("hash password", err)
	}
	return string(b), nil
}

func requireAdmin(id *users.Identity) error {
	if !id.Authenticated() {
		return apperr.Unauthenticated(msgSignIn)
	}
	if !id.IsAdmin() {
		return apperr.Forbidden(msgAdminRequired)
	}
	return nil
}
