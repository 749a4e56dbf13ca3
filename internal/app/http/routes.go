package routes

import (
	"net/http"

	adminapi "musical-catalog/internal/api/admin"
	authapi "musical-catalog/internal/api/auth"
	musicalsapi "musical-catalog/internal/api/musicals"
	usersapi "musical-catalog/internal/api/users"
	"musical-catalog/internal/app/http/middleware"
	"musical-catalog/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// Deps are the handlers and shared middleware the router mounts.
type Deps struct {
	Tokens   middleware.TokenParser
	Musicals *musicalsapi.Handler
	Auth     *authapi.Handler
	Users    *usersapi.Handler
	Admin    *adminapi.Handler

	// AuthLimit throttles sign-in and sign-up. Nil disables it.
	AuthLimit gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Every route below may carry a bearer token.
	api := r.Group("/")
	api.Use(middleware.Identify(d.Tokens), middleware.SanitizeInput())

	accounts := api.Group("/")
	if d.AuthLimit != nil {
		accounts.Use(d.AuthLimit)
	}
	accounts.POST("/signup", d.Auth.Register)
	accounts.POST("/signin", d.Auth.Login)

	if d.Auth.GoogleEnabled() {
		api.GET("/auth/google", d.Auth.GoogleStart)
		api.GET("/auth/google/callback", d.Auth.GoogleCallback)
	}

	// Catalog routes authorize inside the service so anonymous and
	// non-admin callers get distinct errors.
	api.GET("/musicals", d.Musicals.List)
	api.GET("/musicals/:id", d.Musicals.Get)
	api.POST("/musicals", d.Musicals.Create)
	api.PUT("/musicals/:id", d.Musicals.Update)
	api.PATCH("/musicals/:id", d.Musicals.Update)
	api.DELETE("/musicals/:id", d.Musicals.Delete)

	if d.Musicals.PostersEnabled() {
		api.POST("/musicals/posters", middleware.RequireRole(users.RoleAdmin), d.Musicals.UploadPoster)
	}

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.RequireIdentity())
	auth.GET("/me", d.Users.GetCurrentUser)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(users.RoleAdmin))
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.PUT("/users/:id/role", d.Admin.UpdateUserRole)
}
