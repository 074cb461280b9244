package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/util/files"
)

const (
	RecordedFileName = "recorded_audio.wav"
	uploadBaseName   = "uploaded_audio"
)

// uploadExtensions are kept on the intermediate file; anything else is
// stored as .wav and left to the prober to sort out.
var uploadExtensions = []string{".mp3", ".wav", ".m4a"}

// AudioSource produces audio assets from the microphone or an upload.
type AudioSource interface {
	CaptureFromMicrophone(ctx context.Context, durationSec int, sampleRate int, outputPath string) (*model.AudioAsset, error)
	AcceptUpload(ctx context.Context, r io.Reader, outputPath string) (*model.AudioAsset, error)
}

// TranscriptionEngine turns an audio asset into text plus a language label.
type TranscriptionEngine interface {
	Transcribe(ctx context.Context, asset model.AudioAsset) (model.TranscriptionResult, error)
}

// TranscriptStore persists transcript text.
type TranscriptStore interface {
	Save(text string, fileName string) (*model.TranscriptFile, error)
}

// Metrics receives per-action and per-stage timings.
type Metrics interface {
	ObserveAction(action string, outcome string, elapsed time.Duration)
	ObserveStage(stage string, elapsed time.Duration)
}

// Config holds the pipeline settings.
type Config struct {
	WorkDir        string
	SampleRate     int
	TranscriptName string
}

// Outcome is what a successful action produced.
type Outcome struct {
	Asset      model.AudioAsset
	Result     model.TranscriptionResult
	Transcript *model.TranscriptFile
}

// Pipeline runs record-or-upload, transcribe, save as a single action.
// Only one action runs at a time; a concurrent request fails with ErrBusy.
type Pipeline struct {
	config  Config
	source  AudioSource
	engine  TranscriptionEngine
	store   TranscriptStore
	metrics Metrics
	logger  *zap.Logger

	run sync.Mutex

	mu        sync.RWMutex
	status    Snapshot
	observers []func(Snapshot)
}

// New creates a Pipeline. metrics and logger may be nil.
func New(config Config, source AudioSource, engine TranscriptionEngine, store TranscriptStore, metrics Metrics, logger *zap.Logger) *Pipeline {
	if config.SampleRate <= 0 {
		config.SampleRate = 44100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		config:  config,
		source:  source,
		engine:  engine,
		store:   store,
		metrics: metrics,
		logger:  logger,
		status:  Snapshot{Stage: StageIdle, Indicator: IndicatorIdle, UpdatedAt: time.Now()},
	}
}

// OnStatus registers fn to receive every status change. fn runs on the
// goroutine executing the action and must not call back into the pipeline.
func (p *Pipeline) OnStatus(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Status returns the current status.
func (p *Pipeline) Status() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// RecordAndTranscribe records durationSec seconds from the microphone,
// transcribes them and saves the transcript.
func (p *Pipeline) RecordAndTranscribe(ctx context.Context, durationSec int) (*Outcome, error) {
	if !p.run.TryLock() {
		return nil, apperrors.ErrBusy
	}
	defer p.run.Unlock()

	path := filepath.Join(p.config.WorkDir, RecordedFileName)
	p.begin(ActionRecord, StageCapturing, IndicatorRecording, durationSec)

	return p.execute(ctx, ActionRecord, path, func() (*model.AudioAsset, error) {
		return p.source.CaptureFromMicrophone(ctx, durationSec, p.config.SampleRate, path)
	})
}

// TranscribeUpload stores the uploaded audio, transcribes it and saves the
// transcript. originalName only selects the intermediate file extension.
func (p *Pipeline) TranscribeUpload(ctx context.Context, r io.Reader, originalName string) (*Outcome, error) {
	if !p.run.TryLock() {
		return nil, apperrors.ErrBusy
	}
	defer p.run.Unlock()

	path := filepath.Join(p.config.WorkDir, UploadFileName(originalName))
	p.begin(ActionUpload, StageUploading, IndicatorUploading, 0)

	return p.execute(ctx, ActionUpload, path, func() (*model.AudioAsset, error) {
		return p.source.AcceptUpload(ctx, r, path)
	})
}

// UploadFileName returns the intermediate name used for an upload.
func UploadFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uploadBaseName + lo.Ternary(lo.Contains(uploadExtensions, ext), ext, ".wav")
}

func (p *Pipeline) execute(ctx context.Context, action Action, path string, acquire func() (*model.AudioAsset, error)) (outcome *Outcome, err error) {
	start := time.Now()
	defer func() {
		if rmErr := files.RemoveIfExists(path); rmErr != nil {
			p.logger.Warn("failed to remove audio asset", zap.String("path", path), zap.Error(rmErr))
		}
		p.finish(action, start, outcome, err)
	}()

	if err := files.EnsureDir(p.config.WorkDir); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "cannot create work directory")
	}

	stageStart := time.Now()
	asset, err := acquire()
	if err != nil {
		return nil, ensureKind(err, lo.Ternary(action == ActionRecord, apperrors.KindCapture, apperrors.KindIO))
	}
	p.observeStage(string(lo.Ternary(action == ActionRecord, StageCapturing, StageUploading)), stageStart)
	p.transition(StageAssetReady, IndicatorTranscribing)

	p.transition(StageTranscribing, IndicatorTranscribing)
	stageStart = time.Now()
	result, err := p.engine.Transcribe(ctx, *asset)
	if err != nil {
		return nil, ensureKind(err, apperrors.KindInference)
	}
	p.observeStage(string(StageTranscribing), stageStart)

	transcript, err := p.store.Save(result.Text, p.config.TranscriptName)
	if err != nil {
		return nil, ensureKind(err, apperrors.KindIO)
	}

	p.logger.Info("transcription complete",
		zap.String("action", string(action)),
		zap.String("language", result.Language),
		zap.Int("chars", len(result.Text)),
		zap.String("transcript", transcript.Path),
		zap.Duration("elapsed", time.Since(start)))

	return &Outcome{Asset: *asset, Result: result, Transcript: transcript}, nil
}

// ensureKind leaves typed errors alone and classifies anything else.
func ensureKind(err error, kind apperrors.Kind) error {
	if apperrors.KindOf(err) != apperrors.KindUnknown {
		return err
	}
	return apperrors.Wrap(err, kind, string(kind)+" failed")
}

func (p *Pipeline) begin(action Action, stage Stage, indicator Indicator, durationSec int) {
	p.update(func(s *Snapshot) {
		*s = Snapshot{
			Stage:          stage,
			Indicator:      indicator,
			Action:         action,
			Busy:           true,
			DurationSec:    durationSec,
			TranscriptName: s.TranscriptName,
		}
	})
}

func (p *Pipeline) transition(stage Stage, indicator Indicator) {
	p.update(func(s *Snapshot) {
		s.Stage = stage
		s.Indicator = indicator
	})
}

func (p *Pipeline) finish(action Action, start time.Time, outcome *Outcome, err error) {
	elapsed := time.Since(start)
	if err != nil {
		p.logger.Error("action failed",
			zap.String("action", string(action)),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		p.update(func(s *Snapshot) {
			s.Stage = StageIdle
			s.Indicator = IndicatorError
			s.Busy = false
			s.DurationSec = 0
			s.Language = ""
			s.Text = ""
			s.ErrorKind = apperrors.KindOf(err)
			s.ErrorMessage = err.Error()
		})
		p.observeAction(action, string(apperrors.KindOf(err)), elapsed)
		return
	}

	p.update(func(s *Snapshot) {
		s.Stage = StageResultReady
		s.Language = outcome.Result.Language
		s.Text = outcome.Result.Text
		s.TranscriptName = outcome.Transcript.Name
	})
	p.update(func(s *Snapshot) {
		s.Stage = StageIdle
		s.Indicator = IndicatorSuccess
		s.Busy = false
		s.DurationSec = 0
	})
	p.observeAction(action, "success", elapsed)
}

func (p *Pipeline) update(fn func(s *Snapshot)) {
	p.mu.Lock()
	fn(&p.status)
	p.status.UpdatedAt = time.Now()
	snapshot := p.status
	observers := append([]func(Snapshot){}, p.observers...)
	p.mu.Unlock()

	for _, observe := range observers {
		observe(snapshot)
	}
}

func (p *Pipeline) observeAction(action Action, outcome string, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveAction(string(action), outcome, elapsed)
	}
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, time.Since(start))
	}
}
