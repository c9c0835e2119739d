package places

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/module/vendorapi"
	"github.com/mysterie/creditgate/internal/shared/response"
)

// Handler handles places HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new places handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers places routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/places", h.Search)
}

// Search handles POST /places.
func (h *Handler) Search(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Missing email parameter")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	result, err := h.service.Search(c.Request.Context(), email, body)
	if err != nil {
		h.handleSearchError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *Handler) handleSearchError(c *gin.Context, err error) {
	if handled := response.HandleError(c, err, []response.ErrorMapping{
		{Err: ledger.ErrUserNotFound, Status: http.StatusNotFound, Message: "User does not exist"},
		{Err: ledger.ErrInsufficientCredit, Status: http.StatusForbidden, Message: "No doctor search credits available"},
		{Err: ErrInvalidAction, Status: http.StatusBadRequest, Message: "Invalid action specified"},
	}); handled {
		return
	}

	// Vendor failures report under the upstream status when one was
	// received.
	if ve, ok := vendorapi.AsError(err); ok {
		status := ve.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		response.Error(c, status, "Failed to search nearby places")
		return
	}

	response.InternalError(c, "")
}
