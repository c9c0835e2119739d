package ledger

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysterie/creditgate/internal/shared/response"
)

// Handler handles account lookup HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new ledger handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers account routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.GetUserDetails)
}

// GetUserDetails handles GET /users.
func (h *Handler) GetUserDetails(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Email parameter is required")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		response.InternalError(c, "Database operation failed")
		return
	}

	c.JSON(http.StatusOK, user.Record())
}
