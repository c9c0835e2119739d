package quote

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/shared/response"
)

// Handler handles quote HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new quote handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers quote routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	quotes := r.Group("/quotes")
	{
		quotes.GET("", h.Lookup)
		quotes.GET("/all", h.List)
	}
}

// Lookup handles GET /quotes.
func (h *Handler) Lookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Missing email parameter")
		return
	}

	compNameOffering := c.Query("compNameOfferering")
	if compNameOffering == "" {
		response.BadRequest(c, "Missing compNameOfferering parameter")
		return
	}

	quote, err := h.service.Lookup(c.Request.Context(), email, compNameOffering)
	if err != nil {
		response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
			{Err: ledger.ErrUserNotFound, Status: http.StatusNotFound, Message: "User does not exist"},
			{Err: ledger.ErrInsufficientCredit, Status: http.StatusForbidden, Message: "No Quote search credits available"},
			{Err: ErrQuoteNotFound, Status: http.StatusNotFound, Message: "Quote not found"},
			{Err: ErrStoreFailure, Status: http.StatusInternalServerError, Message: "Failed to retrieve data from database"},
		})
		return
	}

	c.JSON(http.StatusOK, quote.Record())
}

// List handles GET /quotes/all.
func (h *Handler) List(c *gin.Context) {
	quotes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
			{Err: ErrStoreFailure, Status: http.StatusInternalServerError, Message: "Database operation failed"},
		})
		return
	}

	records := make([]map[string]any, 0, len(quotes))
	for i := range quotes {
		records = append(records, quotes[i].Record())
	}
	c.JSON(http.StatusOK, records)
}
