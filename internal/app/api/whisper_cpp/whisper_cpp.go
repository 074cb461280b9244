package whisper_cpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"speech-whisper/internal/app/api/provider"
	"speech-whisper/internal/app/audio"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/util/files"
)

const providerName = "whisper_cpp"

// Config represents configuration specific to the local whisper.cpp provider
type Config struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	TempDir    string `yaml:"temp_dir"`
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// LocalTranscriber runs the whisper.cpp CLI on local files.
type LocalTranscriber struct {
	config Config
	ffmpeg *audio.FFmpeg
	logger *zap.Logger
}

// outputJSON is what whisper.cpp writes with -oj.
type outputJSON struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config Config) *LocalTranscriber {
	if config.BinaryPath == "" {
		config.BinaryPath = "whisper-cli"
	}
	if config.Language == "" {
		config.Language = provider.LanguageAuto
	}
	if config.TempDir == "" {
		config.TempDir = filepath.Join(os.TempDir(), "s2t-whisper-cpp")
	}
	return &LocalTranscriber{
		config: config,
		ffmpeg: audio.NewFFmpeg(config.FFmpegPath, ""),
		logger: zap.L().Named(providerName),
	}
}

// LoadModel checks the binary and model once so the first transcription
// does not discover a broken install halfway through.
func (lt *LocalTranscriber) LoadModel(ctx context.Context) error {
	if _, err := exec.LookPath(lt.config.BinaryPath); err != nil {
		return provider.NewTranscriptionError(providerName, provider.CodeModelLoadError, false, err,
			"whisper.cpp binary not found: %s", lt.config.BinaryPath)
	}

	stat, err := os.Stat(lt.config.ModelPath)
	if err != nil {
		return provider.NewTranscriptionError(providerName, provider.CodeModelLoadError, false, err,
			"whisper model not found at %s", lt.config.ModelPath)
	}
	if stat.IsDir() || stat.Size() == 0 {
		return provider.NewTranscriptionError(providerName, provider.CodeModelLoadError, false, nil,
			"whisper model at %s is not a model file", lt.config.ModelPath)
	}

	lt.logger.Info("model ready", zap.String("model", lt.config.ModelPath), zap.String("binary", lt.config.BinaryPath))
	return ctx.Err()
}

// TranscriptWithOptions implements provider.TranscriptionProvider
func (lt *LocalTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidInput, false, nil, "input file path is required")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeFileNotFound, false, err,
			"input file not found: %s", request.InputFilePath)
	}
	if err := files.EnsureDir(lt.config.TempDir); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeExecutionError, true, err,
			"failed to create temp directory: %v", err)
	}

	inputPath, cleanup, err := lt.prepareInput(ctx, request)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	language := lo.CoalesceOrEmpty(request.Language, lt.config.Language)
	outputBase := filepath.Join(lt.config.TempDir, "whisper_"+uuid.New().String())
	defer files.RemoveIfExists(outputBase + ".json")

	args := lt.Args(inputPath, outputBase, language, lo.CoalesceOrEmpty(request.Prompt, lt.config.Prompt))
	lt.logger.Debug("running whisper.cpp", zap.String("binary", lt.config.BinaryPath), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, lt.config.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, provider.NewTranscriptionError(providerName, provider.CodeTimeout, true, ctxErr, "whisper.cpp interrupted: %v", ctxErr)
		}
		return nil, provider.NewTranscriptionError(providerName, provider.CodeExecutionError, true, err,
			"whisper.cpp failed: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outputBase + ".json")
	if err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeOutputError, false, err,
			"failed to read whisper.cpp output: %v", err)
	}

	response, err := ParseOutput(data)
	if err != nil {
		return nil, err
	}
	response.ProcessingTime = time.Since(startTime)
	response.ModelUsed = filepath.Base(lt.config.ModelPath)

	lt.logger.Info("transcription finished",
		zap.String("language", response.Language),
		zap.Duration("took", response.ProcessingTime))
	return response, nil
}

// Args builds the whisper.cpp command line.
func (lt *LocalTranscriber) Args(inputPath, outputBase, language, prompt string) []string {
	args := []string{
		"-m", lt.config.ModelPath,
		"-l", language,
		"-oj",
		"-of", outputBase,
		"-np",
	}
	if lt.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.config.Threads))
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}
	return append(args, "-f", inputPath)
}

// prepareInput returns a 16 kHz mono WAV path for whisper.cpp, converting
// with ffmpeg when needed. cleanup removes any converted copy.
func (lt *LocalTranscriber) prepareInput(ctx context.Context, request *provider.TranscriptionRequest) (string, func(), error) {
	noop := func() {}

	if request.Is16kHzMonoWav {
		return request.InputFilePath, noop, nil
	}
	if info, err := audio.InspectWav(request.InputFilePath); err == nil && info.Is16kHzMonoPCM() {
		return request.InputFilePath, noop, nil
	}

	converted := filepath.Join(lt.config.TempDir, "input_"+uuid.New().String()+".wav")
	lt.logger.Debug("converting input to 16kHz mono wav", zap.String("input", request.InputFilePath))

	if err := lt.ffmpeg.ConvertTo16kHzMonoWav(ctx, request.InputFilePath, converted); err != nil {
		files.RemoveIfExists(converted)
		code := provider.CodeDecodeError
		if apperrors.KindOf(err) == apperrors.KindConfig || ctx.Err() != nil {
			code = provider.CodeExecutionError
		}
		return "", noop, provider.NewTranscriptionError(providerName, code, false, err, "failed to convert input: %v", err)
	}

	return converted, func() { files.RemoveIfExists(converted) }, nil
}

// ParseOutput turns whisper.cpp JSON output into a response.
func ParseOutput(data []byte) (*provider.TranscriptionResponse, error) {
	var out outputJSON
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeOutputError, false, err,
			"failed to parse whisper.cpp output: %v", err)
	}
	if out.Result.Language == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeMissingLanguage, false, nil,
			"whisper.cpp output has no detected language")
	}

	segments := make([]provider.TranscriptionSegment, 0, len(out.Transcription))
	var end int64
	for i, seg := range out.Transcription {
		segments = append(segments, provider.TranscriptionSegment{
			ID:    i,
			Text:  seg.Text,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
		})
		end = seg.Offsets.To
	}

	return &provider.TranscriptionResponse{
		Text:     provider.JoinSegments(segments),
		Language: out.Result.Language,
		Duration: time.Duration(end) * time.Millisecond,
		Segments: segments,
	}, nil
}

// GetProviderInfo returns metadata about the whisper.cpp provider
func (lt *LocalTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper.cpp (Local)",
		Type:        provider.ProviderTypeLocal,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
		},
		SupportsLanguageDetection: true,
		RequiresBinary:            true,
		DefaultModel:              "ggml-base.bin",
	}
}

// ValidateConfiguration validates the provider configuration
func (lt *LocalTranscriber) ValidateConfiguration() error {
	if lt.config.ModelPath == "" {
		return fmt.Errorf("model_path is required for %s provider", providerName)
	}
	if lt.config.Threads < 0 {
		return fmt.Errorf("threads must not be negative")
	}
	return nil
}

// HealthCheck performs a health check on the provider
func (lt *LocalTranscriber) HealthCheck(ctx context.Context) error {
	if err := lt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return lt.LoadModel(ctx)
}
