package auth

import (
	"context"
	"net/http"
	"net/url"

	"musical-catalog/internal/api/respond"
	"musical-catalog/internal/auth"
	"musical-catalog/internal/domain/apperr"

	"github.com/gin-gonic/gin"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 300
)

// GoogleFlow is the OAuth2/OIDC exchange with Google.
type GoogleFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error)
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	state, err := auth.RandomState()
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		respond.BadRequest(c, "Missing code or state", nil)
		return
	}

	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		respond.BadRequest(c, "Invalid OAuth state", nil)
		return
	}
	// single use
	c.SetCookie(stateCookie, "", -1, "/", "", h.secureCookies, true)

	claims, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	s, err := h.accounts.GoogleSignIn(c.Request.Context(), *claims)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	if h.frontendRedirect == "" {
		c.JSON(http.StatusOK, newSessionResponse(s))
		return
	}
	target, err := url.Parse(h.frontendRedirect)
	if err != nil {
		respond.Error(c, h.log, apperr.Internal("parse frontend redirect", err))
		return
	}
	q := target.Query()
	q.Set("token", s.Token)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}
