package routes

import (
	"github.com/gin-gonic/gin"

	"speech-whisper/internal/api/v1/handlers"
	"speech-whisper/internal/api/v1/services"
)

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService, container.MaxUploadMB)
	router.POST("/recordings", transcriptionHandler.Record)
	router.POST("/transcriptions/upload", transcriptionHandler.Upload)
	router.GET("/status", transcriptionHandler.Status)
	router.GET("/transcript", transcriptionHandler.Transcript)

	if container.ProviderService != nil {
		providerHandler := handlers.NewProviderHandler(container.ProviderService, container.HealthService)
		router.GET("/providers", providerHandler.List)
	}
}

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	ProviderService      services.ProviderService
	HealthService        services.HealthService
	MaxUploadMB          int
}
