package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"speech-whisper/internal/app/api/provider"
	openaiclient "speech-whisper/internal/app/api/openai"
)

const providerName = "openai"

// OpenAIProviderConfig represents configuration specific to OpenAI Whisper provider
type OpenAIProviderConfig struct {
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	Language     string        `yaml:"language"`
	Temperature  float32       `yaml:"temperature"`
	Prompt       string        `yaml:"prompt"`
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	config OpenAIProviderConfig
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(config OpenAIProviderConfig) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	client := openaiclient.NewClient(openaiclient.ClientConfig{
		APIKey:       config.APIKey,
		BaseURL:      config.BaseURL,
		Organization: config.Organization,
		Timeout:      config.Timeout,
	})
	return &RemoteTranscriber{
		client: client,
		config: config,
		logger: zap.L().Named(providerName),
	}
}

// TranscriptWithOptions implements provider.TranscriptionProvider. It always
// asks for verbose_json since that is the only format carrying the detected language.
func (rt *RemoteTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidInput, false, nil, "input file path is required")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeFileNotFound, false, err,
			"input file not found: %s", request.InputFilePath)
	}

	model := lo.CoalesceOrEmpty(request.Model, rt.config.Model)
	audioRequest := openai.AudioRequest{
		Model:       model,
		FilePath:    request.InputFilePath,
		Prompt:      lo.CoalesceOrEmpty(request.Prompt, rt.config.Prompt),
		Temperature: rt.config.Temperature,
		Language:    apiLanguage(lo.CoalesceOrEmpty(request.Language, rt.config.Language)),
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	rt.logger.Debug("calling transcription API", zap.String("model", model), zap.String("file", request.InputFilePath))

	resp, err := rt.client.CreateTranscription(ctx, audioRequest)
	if err != nil {
		return nil, handleAPIError(ctx, err)
	}

	if resp.Language == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeMissingLanguage, false, nil,
			"API response has no language; the server may not support verbose_json")
	}

	segments := make([]provider.TranscriptionSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, provider.TranscriptionSegment{ID: s.ID, Text: s.Text, Start: s.Start, End: s.End})
	}

	return &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(resp.Text),
		Language:       resp.Language,
		Duration:       time.Duration(resp.Duration * float64(time.Second)),
		Segments:       segments,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      model,
	}, nil
}

// apiLanguage maps "auto" to the API's own detection, which is requested by
// omitting the language.
func apiLanguage(language string) string {
	if language == provider.LanguageAuto {
		return ""
	}
	return language
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return provider.NewTranscriptionError(providerName, provider.CodeTimeout, true, err, "request aborted: %v", ctxErr)
	}

	status := 0
	message := err.Error()
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 0:
		return provider.NewTranscriptionError(providerName, provider.CodeNetworkError, true, err, "transcription request failed: %v", err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.NewTranscriptionError(providerName, provider.CodeAPIError, false, err, "OpenAI API key is invalid or missing: %s", message)
	case http.StatusTooManyRequests:
		return provider.NewTranscriptionError(providerName, provider.CodeAPIError, true, err, "OpenAI API rate limit exceeded: %s", message)
	case http.StatusRequestEntityTooLarge:
		return provider.NewTranscriptionError(providerName, provider.CodeInvalidFile, false, err, "audio file is too large for the API: %s", message)
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return provider.NewTranscriptionError(providerName, provider.CodeInvalidFile, false, err, "invalid audio file: %s", message)
	default:
		return provider.NewTranscriptionError(providerName, provider.CodeAPIError, status >= 500, err, "OpenAI API error (status %d): %s", status, message)
	}
}

// GetProviderInfo returns metadata about the OpenAI provider
func (rt *RemoteTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "OpenAI Whisper API",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatWAV,
			provider.FormatWEBM,
			provider.FormatFLAC,
			provider.FormatOGG,
		},
		MaxFileSizeMB:             25,
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
		RequiresAPIKey:            true,
		DefaultModel:              openai.Whisper1,
	}
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}
	// compatible servers accept arbitrary keys
	if rt.config.BaseURL == "" && !strings.HasPrefix(rt.config.APIKey, "sk-") {
		return fmt.Errorf("OpenAI API key should start with 'sk-'")
	}
	if rt.config.Temperature < 0 || rt.config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck performs a health check on the provider
func (rt *RemoteTranscriber) HealthCheck(ctx context.Context) error {
	if err := rt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if _, err := rt.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API health check failed: %w", err)
	}
	return nil
}
