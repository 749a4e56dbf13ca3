package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens map[string]*users.Identity

func (s stubTokens) Parse(raw string) (*users.Identity, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return nil, apperr.Unauthenticated("Invalid or expired token")
}

var tokens = stubTokens{
	"admin-token": {ID: "a-1", Role: users.RoleAdmin},
	"user-token":  {ID: "u-1", Role: users.RoleUser},
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		id := IdentityFrom(c)
		if id == nil {
			c.JSON(http.StatusOK, gin.H{"id": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.ID})
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentify(t *testing.T) {
	r := newRouter(Identify(tokens))

	tests := []struct {
		name   string
		auth   string
		status int
		id     string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid token", "Bearer user-token", http.StatusOK, "u-1"},
		{"invalid token", "Bearer forged", http.StatusUnauthorized, ""},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.auth)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"`+tt.id+`"}`, w.Body.String())
			}
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	r := newRouter(Identify(tokens), RequireIdentity())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer user-token").Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter(Identify(tokens), RequireRole(users.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer admin-token").Code)
}

func TestSanitizeInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeInput())

	var got map[string]any
	r.POST("/", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		c.Status(http.StatusNoContent)
	})

	body := `{"title":"<b>Cats</b><script>alert(1)</script>","posterUrl":"https://x.test/p.jpg?a=1&b=2","tags":["<i>a</i>"],"year":1981}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "Cats", got["title"])
	assert.Equal(t, "https://x.test/p.jpg?a=1&b=2", got["posterUrl"])
	assert.Equal(t, []any{"a"}, got["tags"])
	assert.Equal(t, float64(1981), got["year"])
}

func TestSanitizeInput_MalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRouter(RateLimit(ctx, 0.001, 2))

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}
