package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speech-whisper/internal/api/middleware"
	"speech-whisper/internal/api/v1/handlers"
	v1routes "speech-whisper/internal/api/v1/routes"
	"speech-whisper/internal/api/v1/services"
)

// Config represents API server configuration
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
	MaxUploadMB  int
	Limits       services.RecordingLimits
}

// Dependencies are the application components the server exposes
type Dependencies struct {
	Pipeline    services.Pipeline
	Transcripts services.TranscriptReader
	Engine      services.Engine
	Metrics     http.Handler
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(config Config, deps Dependencies, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	middleware.UseJSONFieldNames()

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	providerService := services.NewProviderService(deps.Engine)
	container := &v1routes.ServiceContainer{
		TranscriptionService: services.NewTranscriptionService(deps.Pipeline, deps.Transcripts, config.Limits),
		ProviderService:      providerService,
		HealthService:        providerService,
		MaxUploadMB:          config.MaxUploadMB,
	}

	router.GET("/health", handlers.NewProviderHandler(container.ProviderService, container.HealthService).Health)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1routes.RegisterRoutes(v1, container)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "s2t speech-to-text API",
			"version": "1.0",
			"endpoints": gin.H{
				"health":     "/health",
				"metrics":    "/metrics",
				"record":     "POST /api/v1/recordings",
				"upload":     "POST /api/v1/transcriptions/upload",
				"status":     "/api/v1/status",
				"transcript": services.TranscriptDownloadPath,
				"providers":  "/api/v1/providers",
			},
		})
	})

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start listens in the background. Listen failures are reported on the
// returned channel rather than exiting the process.
func (s *Server) Start() <-chan error {
	s.logger.Info("Starting API server",
		zap.String("address", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Failed to start server", zap.Error(err))
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr is the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
