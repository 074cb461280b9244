package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"speech-whisper/internal/app/api/provider"
	"speech-whisper/internal/app/audio"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
)

// Config selects the provider and how it is driven.
type Config struct {
	Provider       string
	ProviderConfig map[string]interface{}
	Language       string
	Timeout        time.Duration
}

// Engine holds one loaded provider and transcribes audio assets with it.
// The provider is created and its model loaded once, on first use or on
// an explicit Load; a failed load is retried on the next call.
type Engine struct {
	config  Config
	prober  audio.Prober
	metrics provider.ProviderMetrics
	logger  *zap.Logger

	create func(name string, config map[string]interface{}) (provider.TranscriptionProvider, error)

	mu       sync.Mutex
	provider provider.TranscriptionProvider
	loaded   bool
}

// New creates an Engine that builds its provider from the registry.
func New(config Config, prober audio.Prober, metrics provider.ProviderMetrics, logger *zap.Logger) *Engine {
	if config.Language == "" {
		config.Language = provider.LanguageAuto
	}
	if metrics == nil {
		metrics = provider.NewProviderMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config:  config,
		prober:  prober,
		metrics: metrics,
		logger:  logger,
		create:  provider.CreateProvider,
	}
}

// NewWithProvider creates an Engine around an already constructed provider.
func NewWithProvider(p provider.TranscriptionProvider, config Config, prober audio.Prober, metrics provider.ProviderMetrics, logger *zap.Logger) *Engine {
	e := New(config, prober, metrics, logger)
	e.provider = p
	if e.config.Provider == "" {
		e.config.Provider = p.GetProviderInfo().Name
	}
	return e
}

// Load creates the provider and loads its model if that has not happened yet.
func (e *Engine) Load(ctx context.Context) error {
	_, err := e.ensureLoaded(ctx)
	return err
}

func (e *Engine) ensureLoaded(ctx context.Context) (provider.TranscriptionProvider, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return e.provider, nil
	}

	if e.provider == nil {
		p, err := e.create(e.config.Provider, e.config.ProviderConfig)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindConfig, "cannot create %s provider", e.config.Provider)
		}
		e.provider = p
	}

	if loader, ok := e.provider.(provider.ModelLoader); ok {
		start := time.Now()
		if err := loader.LoadModel(ctx); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindInference, "failed to load %s model", e.config.Provider)
		}
		e.logger.Info("model loaded", zap.String("provider", e.config.Provider), zap.Duration("took", time.Since(start)))
	}

	e.loaded = true
	return e.provider, nil
}

// Loaded reports whether the model is ready.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// ProviderName is the configured provider type.
func (e *Engine) ProviderName() string {
	return e.config.Provider
}

// Metrics exposes the per-provider counters.
func (e *Engine) Metrics() provider.ProviderMetrics {
	return e.metrics
}

// HealthCheck checks the provider without transcribing anything.
func (e *Engine) HealthCheck(ctx context.Context) error {
	p, err := e.ensureLoaded(ctx)
	if err != nil {
		return err
	}
	return p.HealthCheck(ctx)
}

// Transcribe detects the spoken language of the asset and transcribes it.
func (e *Engine) Transcribe(ctx context.Context, asset model.AudioAsset) (model.TranscriptionResult, error) {
	p, err := e.ensureLoaded(ctx)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindConfig {
			return model.TranscriptionResult{}, apperrors.Wrap(err, apperrors.KindInference, "transcription engine unavailable")
		}
		return model.TranscriptionResult{}, err
	}

	info, err := e.prober.Probe(ctx, asset.Path)
	if err != nil {
		return model.TranscriptionResult{}, probeError(ctx, err)
	}
	e.logger.Debug("audio probed",
		zap.String("path", asset.Path),
		zap.String("container", info.Container),
		zap.Int("sample_rate", info.SampleRate),
		zap.Int("channels", info.Channels),
		zap.Duration("duration", info.Duration))

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.TranscriptWithOptions(ctx, &provider.TranscriptionRequest{
		InputFilePath:  asset.Path,
		Language:       e.config.Language,
		Is16kHzMonoWav: info.Container == "wav" && info.Is16kHzMonoPCM(),
	})
	if err != nil {
		e.metrics.RecordFailure(e.config.Provider, errorCode(err))
		return model.TranscriptionResult{}, e.classify(ctx, err)
	}

	if resp.Language == "" {
		e.metrics.RecordFailure(e.config.Provider, provider.CodeMissingLanguage)
		return model.TranscriptionResult{}, apperrors.NewKind(apperrors.KindInference, "model did not report a language")
	}

	elapsed := time.Since(start)
	e.metrics.RecordSuccess(e.config.Provider, elapsed.Milliseconds(), info.Duration.Seconds())

	return model.TranscriptionResult{
		Language:       resp.Language,
		Text:           strings.TrimSpace(resp.Text),
		Provider:       e.config.Provider,
		Model:          resp.ModelUsed,
		ProcessingTime: elapsed,
	}, nil
}

// probeError keeps tool problems and cancellation distinct from undecodable input.
func probeError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperrors.Wrap(err, apperrors.KindInference, "transcription cancelled")
	}
	if apperrors.KindOf(err) == apperrors.KindConfig {
		return apperrors.Wrap(err, apperrors.KindInference, "audio tools unavailable")
	}
	if apperrors.KindOf(err) == apperrors.KindDecode {
		return err
	}
	return apperrors.Wrap(err, apperrors.KindDecode, "audio could not be probed")
}

func (e *Engine) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && e.config.Timeout > 0 {
		return apperrors.Wrap(err, apperrors.KindInference, apperrors.Timeout(apperrors.KindInference, "transcription", e.config.Timeout.String()).Error())
	}

	var terr *provider.TranscriptionError
	if errors.As(err, &terr) && provider.IsDecodeCode(terr.Code) {
		return apperrors.Wrap(err, apperrors.KindDecode, "audio could not be decoded")
	}
	return apperrors.Wrap(err, apperrors.KindInference, "transcription failed")
}

func errorCode(err error) string {
	var terr *provider.TranscriptionError
	if errors.As(err, &terr) {
		return terr.Code
	}
	return "unknown"
}
