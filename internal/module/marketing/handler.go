package marketing

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/shared/response"
)

// Handler handles marketing HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new marketing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers marketing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/marketing", h.Plan)
}

// Plan handles POST /marketing. The raw body is the user's brief; the
// completion text is returned as-is, not wrapped in JSON.
func (h *Handler) Plan(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Missing email parameter")
		return
	}

	brief, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	plan, err := h.service.Plan(c.Request.Context(), email, string(brief))
	if err != nil {
		response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
			{Err: ledger.ErrUserNotFound, Status: http.StatusNotFound, Message: "User does not exist"},
			{Err: ledger.ErrInsufficientCredit, Status: http.StatusForbidden, Message: "No marketing search credits available"},
			{Err: ErrStoreFailure, Status: http.StatusInternalServerError, Message: "Failed to retrieve data from database"},
		})
		return
	}

	c.String(http.StatusOK, plan)
}
