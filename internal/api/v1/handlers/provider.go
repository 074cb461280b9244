package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speech-whisper/internal/api/middleware"
	"speech-whisper/internal/api/v1/services"
)

// ProviderHandler handles provider-related API endpoints
type ProviderHandler struct {
	providers services.ProviderService
	health    services.HealthService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providers services.ProviderService, health services.HealthService) *ProviderHandler {
	return &ProviderHandler{
		providers: providers,
		health:    health,
	}
}

// List handles GET /api/v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providers.ListProviders(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": providers,
		"total":     len(providers),
	})
}

// Health handles GET /health
func (h *ProviderHandler) Health(c *gin.Context) {
	resp := h.health.Health(c.Request.Context())
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
