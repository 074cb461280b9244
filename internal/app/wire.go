//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"speech-whisper/internal/api/server"
	"speech-whisper/internal/app/api"
	"speech-whisper/internal/app/api/provider"
	"speech-whisper/internal/app/audio"
	"speech-whisper/internal/app/capture"
	"speech-whisper/internal/app/config"
	"speech-whisper/internal/app/engine"
	"speech-whisper/internal/app/metrics"
	"speech-whisper/internal/app/pipeline"
	"speech-whisper/internal/app/store"
)

func provideProviderMetrics() *provider.DefaultProviderMetrics {
	return provider.NewProviderMetrics()
}

func provideMetrics(providerMetrics *provider.DefaultProviderMetrics) *metrics.Metrics {
	return metrics.New(providerMetrics)
}

func provideFFmpeg(cfg *config.AppConfig) *audio.FFmpeg {
	return audio.NewFFmpeg(cfg.Engine.FFmpegPath, cfg.Engine.FFprobePath)
}

func provideEngine(cfg *config.AppConfig, prober *audio.FileProber, providerMetrics *provider.DefaultProviderMetrics, logger *zap.Logger) *engine.Engine {
	return engine.New(engine.Config{
		Provider:       cfg.Engine.Provider,
		ProviderConfig: cfg.ProviderConfigMap(),
		Language:       cfg.Engine.Language,
		Timeout:        cfg.EngineTimeout(),
	}, prober, providerMetrics, logger.Named("engine"))
}

// provideTranscriber hands the engine to the pipeline through api.Transcriber,
// whose package registers every provider.
func provideTranscriber(eng *engine.Engine) api.Transcriber {
	return eng
}

func provideDevice(cfg *config.AppConfig) (*capture.ExecDevice, error) {
	return capture.NewExecDevice(capture.DeviceConfig{
		Backend:     cfg.Capture.Backend,
		BinaryPath:  cfg.Capture.BinaryPath,
		InputFormat: cfg.Capture.InputFormat,
		InputDevice: cfg.Capture.InputDevice,
	})
}

func provideSource(device *capture.ExecDevice, cfg *config.AppConfig, logger *zap.Logger) *capture.Source {
	return capture.NewSource(device, capture.Limits{
		MinDurationSec: cfg.Capture.MinDurationSec,
		MaxDurationSec: cfg.Capture.MaxDurationSec,
	}, logger.Named("capture"))
}

func provideStore(cfg *config.AppConfig, logger *zap.Logger) *store.Store {
	return store.New(cfg.Transcript.Dir, cfg.Transcript.FileName, logger.Named("store"))
}

func providePipeline(cfg *config.AppConfig, source *capture.Source, transcriber api.Transcriber, transcripts *store.Store, m *metrics.Metrics, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Config{
		WorkDir:    cfg.WorkDir,
		SampleRate: cfg.Capture.SampleRate,
		// empty: the store's configured default name
		TranscriptName: "",
	}, source, transcriber, transcripts, m, logger.Named("pipeline"))
}

var appSet = wire.NewSet(
	provideProviderMetrics,
	provideMetrics,
	provideFFmpeg,
	audio.NewFileProber,
	provideEngine,
	provideTranscriber,
	provideDevice,
	provideSource,
	provideStore,
	providePipeline,
	wire.Struct(new(App), "*"),
)

// InitializeApp builds the shared application graph.
func InitializeApp(cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	wire.Build(appSet)
	return &App{}, nil
}

// InitializeServer builds the application graph behind the HTTP API.
func InitializeServer(cfg *config.AppConfig, logger *zap.Logger) (*server.Server, error) {
	wire.Build(appSet, NewServer)
	return &server.Server{}, nil
}
