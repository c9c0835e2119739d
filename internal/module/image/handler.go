package image

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/shared/response"
)

// Handler handles image HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new image handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers image routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	images := r.Group("/images")
	{
		images.POST("", h.Generate)
		images.POST("/analysis", h.Analyze)
	}
}

// Generate handles POST /images. The raw body is the prompt; the
// response lists whichever fan-out branches produced a shareable link.
func (h *Handler) Generate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	urls := h.service.GenerateBatch(c.Request.Context(), string(body))

	c.JSON(http.StatusOK, gin.H{"imageUrl": urls})
}

// Analyze handles POST /images/analysis. The raw body is a base64
// image; the email query parameter identifies the account to gate on.
func (h *Handler) Analyze(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		response.BadRequest(c, "Missing 'image' in request body")
		return
	}

	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "Missing email parameter")
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), email, string(body))
	if err != nil {
		h.handleAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h *Handler) handleAnalyzeError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ledger.ErrUserNotFound, Status: http.StatusNotFound, Message: "User does not exist"},
		{Err: ledger.ErrInsufficientCredit, Status: http.StatusForbidden, Message: "No image credits available"},
	})
}
