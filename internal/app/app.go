package app

import (
	"time"

	"go.uber.org/zap"

	"speech-whisper/internal/api/server"
	"speech-whisper/internal/api/v1/services"
	"speech-whisper/internal/app/config"
	"speech-whisper/internal/app/engine"
	"speech-whisper/internal/app/metrics"
	"speech-whisper/internal/app/pipeline"
	"speech-whisper/internal/app/store"
)

// App is everything the CLI and the HTTP server share.
type App struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Engine   *engine.Engine
	Store    *store.Store
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
}

// NewServer exposes app over HTTP.
func NewServer(app *App) *server.Server {
	cfg := app.Config
	return server.NewServer(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
		Environment:  cfg.Server.Environment,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		Limits: services.RecordingLimits{
			MinDurationSec:     cfg.Capture.MinDurationSec,
			MaxDurationSec:     cfg.Capture.MaxDurationSec,
			DefaultDurationSec: cfg.Capture.DefaultDurationSec,
		},
	}, server.Dependencies{
		Pipeline:    app.Pipeline,
		Transcripts: app.Store,
		Engine:      app.Engine,
		Metrics:     app.Metrics.Handler(),
	}, app.Logger.Named("http"))
}
