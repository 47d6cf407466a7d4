package advisory

import (
	"errors"
	"net/http"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler handles the single-shot advisory endpoints
type Handler struct {
	advisoryService *service.AdvisoryService
}

// NewHandler creates a new advisory handler
func NewHandler(advisoryService *service.AdvisoryService) *Handler {
	return &Handler{advisoryService: advisoryService}
}

// RegisterRoutes registers advisory routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/symptom-check", h.CheckSymptoms)
	r.POST("/identify", h.IdentifyImage)
	r.POST("/advisories/generate", h.GenerateAdvisory)
}

// CheckSymptoms diagnoses a symptom description
func (h *Handler) CheckSymptoms(c *gin.Context) {
	var req domain.SymptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.advisoryService.CheckSymptoms(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// IdentifyImage identifies a pest from a photo
func (h *Handler) IdentifyImage(c *gin.Context) {
	var req domain.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identification, err := h.advisoryService.IdentifyImage(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, identification)
}

// GenerateAdvisory drafts a full advisory for a crop/pest pair
func (h *Handler) GenerateAdvisory(c *gin.Context) {
	var req domain.AdvisoryGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.advisoryService.GenerateAdvisory(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGeneration):
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation backend unavailable"})
	case errors.Is(err, domain.ErrUnparseableResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation backend returned an unusable response"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
