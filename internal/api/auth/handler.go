package auth

import (
	"context"
	"net/http"

	"musical-catalog/internal/api/respond"
	apiusers "musical-catalog/internal/api/users"
	"musical-catalog/internal/auth"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/logging"

	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Signup(ctx context.Context, in users.SignupInput) (*auth.Session, error)
	Signin(ctx context.Context, in users.SigninInput) (*auth.Session, error)
	GoogleSignIn(ctx context.Context, gc auth.GoogleClaims) (*auth.Session, error)
}

type Handler struct {
	accounts Accounts
	google   GoogleFlow
	log      logging.Logger

	frontendRedirect string
	secureCookies    bool
}

type Option func(*Handler)

// WithGoogle mounts Google sign-in. redirect, when set, receives the token as
// a query parameter instead of a JSON response.
func WithGoogle(flow GoogleFlow, redirect string, secureCookies bool) Option {
	return func(h *Handler) {
		h.google = flow
		h.frontendRedirect = redirect
		h.secureCookies = secureCookies
	}
}

func NewHandler(accounts Accounts, log logging.Logger, opts ...Option) *Handler {
	h := &Handler{accounts: accounts, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type sessionResponse struct {
	Token string           `json:"token"`
	User  apiusers.UserDTO `json:"user"`
}

func newSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{Token: s.Token, User: apiusers.NewUserDTO(*s.User)}
}

// POST /signup
func (h *Handler) Register(c *gin.Context) {
	var in users.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "Invalid request body", nil)
		return
	}

	s, err := h.accounts.Signup(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(s))
}

// POST /signin
func (h *Handler) Login(c *gin.Context) {
	var in users.SigninInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "Invalid request body", nil)
		return
	}

	s, err := h.accounts.Signin(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (h *Handler) GoogleEnabled() bool {
	return h.google != nil
}
