package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*users.User
	next int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*users.User{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUsers) find(match func(*users.User) bool) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*users.User, error) {
	return f.find(func(u *users.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindByGoogleSub(_ context.Context, sub string) (*users.User, error) {
	return f.find(func(u *users.User) bool { return u.GoogleSub != nil && *u.GoogleSub == sub })
}

func (f *fakeUsers) Create(_ context.Context, u *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return apperr.Conflict("Username already exists")
		}
	}
	f.next++
	u.ID = "user-" + string(rune('0'+f.next))
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUsers) List(context.Context) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]users.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id string, role users.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) LinkGoogle(_ context.Context, id, sub string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.GoogleSub = &sub
	return nil
}

func newTestAccounts() (*Accounts, *fakeUsers) {
	store := newFakeUsers()
	a := NewAccounts(store, NewTokens("secret", time.Hour), nil)
	a.cost = bcrypt.MinCost
	return a, store
}

func TestSignupSignin(t *testing.T) {
	a, _ := newTestAccounts()
	ctx := context.Background()

	s, err := a.Signup(ctx, users.SignupInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, users.RoleUser, s.User.Role)
	assert.NotEqual(t, "password1", *s.User.Password)
	assert.NotEmpty(t, s.Token)

	s, err = a.Signin(ctx, users.SigninInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	id, err := a.tokens.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id.ID)
	assert.Equal(t, users.RoleUser, id.Role)
}

func TestSignup_Errors(t *testing.T) {
	a, _ := newTestAccounts()
	ctx := context.Background()

	_, err := a.Signup(ctx, users.SignupInput{Username: "al", Password: "short"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidationFailed, e.Kind)
	assert.Contains(t, e.Fields, "username")
	assert.Contains(t, e.Fields, "password")

	_, err = a.Signup(ctx, users.SignupInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	_, err = a.Signup(ctx, users.SignupInput{Username: "alice", Password: "password2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSignin_Rejects(t *testing.T) {
	a, store := newTestAccounts()
	ctx := context.Background()

	_, err := a.Signup(ctx, users.SignupInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	sub := "google-sub"
	require.NoError(t, store.Create(ctx, &users.User{Username: "bob@example.com", GoogleSub: &sub}))

	tests := []struct {
		name string
		in   users.SigninInput
		msg  string
	}{
		{"wrong password", users.SigninInput{Username: "alice", Password: "password2"}, msgInvalidCredentials},
		{"unknown user", users.SigninInput{Username: "carol", Password: "password1"}, msgInvalidCredentials},
		{"google only", users.SigninInput{Username: "bob@example.com", Password: "password1"}, msgGoogleAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Signin(ctx, tt.in)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindUnauthenticated, e.Kind)
			assert.Equal(t, tt.msg, e.Message)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	a, store := newTestAccounts()
	ctx := context.Background()

	created, err := a.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = a.EnsureAdmin(ctx, "root", "password1")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := store.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, u.Role)

	created, err = a.EnsureAdmin(ctx, "root", "another-password")
	require.NoError(t, err)
	assert.False(t, created)
	_, err = a.Signin(ctx, users.SigninInput{Username: "root", Password: "password1"})
	assert.NoError(t, err)
}

func TestSetRole(t *testing.T) {
	a, store := newTestAccounts()
	ctx := context.Background()

	s, err := a.Signup(ctx, users.SignupInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	admin := &users.Identity{ID: "admin-1", Role: users.RoleAdmin}

	u, err := a.SetRole(ctx, admin, s.User.ID, users.RoleInput{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, u.Role)

	stored, _ := store.FindByID(ctx, s.User.ID)
	assert.Equal(t, users.RoleAdmin, stored.Role)

	_, err = a.SetRole(ctx, admin, s.User.ID, users.RoleInput{Role: "OWNER"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	_, err = a.SetRole(ctx, admin, "missing", users.RoleInput{Role: users.RoleUser})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = a.SetRole(ctx, admin, admin.ID, users.RoleInput{Role: users.RoleUser})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAdminOperations_RequireAdmin(t *testing.T) {
	a, _ := newTestAccounts()
	ctx := context.Background()

	_, err := a.ListUsers(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = a.ListUsers(ctx, &users.Identity{ID: "u", Role: users.RoleEditor})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = a.SetRole(ctx, &users.Identity{ID: "u", Role: users.RoleUser}, "x", users.RoleInput{Role: users.RoleAdmin})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	list, err := a.ListUsers(ctx, &users.Identity{ID: "a", Role: users.RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGoogleSignIn(t *testing.T) {
	a, store := newTestAccounts()
	ctx := context.Background()

	s, err := a.GoogleSignIn(ctx, GoogleClaims{Sub: "g-1", Email: "dana@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", s.User.Username)
	assert.Equal(t, users.ProviderGoogle, s.User.AuthProvider)
	assert.Nil(t, s.User.Password)

	again, err := a.GoogleSignIn(ctx, GoogleClaims{Sub: "g-1", Email: "dana@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, again.User.ID)

	local, err := a.Signup(ctx, users.SignupInput{Username: "erin@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = a.GoogleSignIn(ctx, GoogleClaims{Sub: "g-2", Email: "erin@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	linked, err := a.GoogleSignIn(ctx, GoogleClaims{Sub: "g-2", Email: "erin@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, linked.User.ID)

	stored, _ := store.FindByID(ctx, local.User.ID)
	require.NotNil(t, stored.GoogleSub)
	assert.Equal(t, "g-2", *stored.GoogleSub)
}

func TestRandomState(t *testing.T) {
	s1, err := RandomState()
	require.NoError(t, err)
	s2, err := RandomState()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 43)
}
