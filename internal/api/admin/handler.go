package admin

import (
	"context"
	"net/http"

	"musical-catalog/internal/api/respond"
	apiusers "musical-catalog/internal/api/users"
	"musical-catalog/internal/app/http/middleware"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/logging"

	"github.com/gin-gonic/gin"
)

type Accounts interface {
	ListUsers(ctx context.Context, id *users.Identity) ([]users.User, error)
	SetRole(ctx context.Context, id *users.Identity, userID string, in users.RoleInput) (*users.User, error)
}

type Handler struct {
	accounts Accounts
	log      logging.Logger
}

func NewHandler(accounts Accounts, log logging.Logger) *Handler {
	return &Handler{accounts: accounts, log: log}
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	list, err := h.accounts.ListUsers(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	out := make([]apiusers.UserDTO, 0, len(list))
	for _, u := range list {
		out = append(out, apiusers.NewUserDTO(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// PUT /admin/users/:id/role
func (h *Handler) UpdateUserRole(c *gin.Context) {
	var in users.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "Invalid request body", nil)
		return
	}

	u, err := h.accounts.SetRole(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), in)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, apiusers.NewUserDTO(*u))
}
