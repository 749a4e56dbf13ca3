package users

import (
	"context"
	"net/http"

	"musical-catalog/internal/api/respond"
	"musical-catalog/internal/app/http/middleware"
	"musical-catalog/internal/domain/access"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/logging"

	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Me(ctx context.Context, id *users.Identity) (*users.User, error)
}

type Handler struct {
	accounts Accounts
	policy   access.Policy
	log      logging.Logger
}

func NewHandler(accounts Accounts, policy access.Policy, log logging.Logger) *Handler {
	return &Handler{accounts: accounts, policy: policy, log: log}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id := middleware.IdentityFrom(c)

	u, err := h.accounts.Me(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User: NewUserDTO(*u),
		Capabilities: CapabilitiesDTO{
			CanWrite:         h.policy.CanWrite(id),
			CanSeeUnreleased: h.policy.CanListUnreleased(id),
		},
	})
}
