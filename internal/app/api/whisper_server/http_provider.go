package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"speech-whisper/internal/app/api/provider"
)

const providerName = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper.cpp server instance
type WhisperServerProvider struct {
	config WhisperServerConfig
	client *http.Client
	logger *zap.Logger
}

// WhisperServerConfig represents configuration for the whisper.cpp server HTTP API
type WhisperServerConfig struct {
	BaseURL       string            `yaml:"base_url"`       // e.g. "http://127.0.0.1:8080"
	InferencePath string            `yaml:"inference_path"` // default "/inference"
	LoadPath      string            `yaml:"load_path"`      // default "/load"
	ModelPath     string            `yaml:"model_path"`     // model to POST to /load; empty keeps the server's model
	Timeout       time.Duration     `yaml:"timeout"`
	Language      string            `yaml:"language"`
	Temperature   float64           `yaml:"temperature"`
	CustomHeaders map[string]string `yaml:"custom_headers"`
}

// WhisperServerResponse represents the verbose_json response from the server
type WhisperServerResponse struct {
	Text             string                 `json:"text,omitempty"`
	Task             string                 `json:"task,omitempty"`
	Language         string                 `json:"language,omitempty"`
	Duration         float64                `json:"duration,omitempty"`
	Segments         []WhisperServerSegment `json:"segments,omitempty"`
	DetectedLanguage string                 `json:"detected_language,omitempty"`
	Error            string                 `json:"error,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewWhisperServerProvider creates a new whisper server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig) *WhisperServerProvider {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.Language == "" {
		config.Language = provider.LanguageAuto
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}

	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: zap.L().Named(providerName),
	}
}

// TranscriptWithOptions implements provider.TranscriptionProvider
func (wsp *WhisperServerProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidInput, false, nil, "input file path is required")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeFileNotFound, false, err,
			"input file not found: %s", request.InputFilePath)
	}

	body, contentType, err := wsp.createMultipartForm(request)
	if err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidInput, false, err,
			"failed to create multipart form: %v", err)
	}

	url := wsp.config.BaseURL + wsp.config.InferencePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidInput, false, err,
			"failed to create HTTP request: %v", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	wsp.setHeaders(httpReq)

	wsp.logger.Debug("posting audio", zap.String("url", url), zap.String("file", filepath.Base(request.InputFilePath)))

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, provider.NewTranscriptionError(providerName, provider.CodeTimeout, true, ctxErr, "request aborted: %v", ctxErr)
		}
		return nil, provider.NewTranscriptionError(providerName, provider.CodeNetworkError, true, err,
			"HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeNetworkError, true, err,
			"failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, responseData)
	}

	parsed, err := ParseResponse(responseData)
	if err != nil {
		return nil, err
	}
	parsed.ProcessingTime = time.Since(startTime)
	parsed.ModelUsed = lo.Ternary(wsp.config.ModelPath != "", filepath.Base(wsp.config.ModelPath), "whisper-server")
	return parsed, nil
}

// statusError classifies a non-200 reply. The server answers 4xx when it
// cannot read the uploaded audio.
func statusError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var parsed WhisperServerResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		message = parsed.Error
	}

	if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
		return provider.NewTranscriptionError(providerName, provider.CodeInvalidFile, false, nil,
			"server rejected audio (status %d): %s", status, message)
	}
	return provider.NewTranscriptionError(providerName, provider.CodeHTTPError, status >= 500, nil,
		"server returned status %d: %s", status, message)
}

// ParseResponse reads a verbose_json body.
func ParseResponse(data []byte) (*provider.TranscriptionResponse, error) {
	var resp WhisperServerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeOutputError, false, err,
			"failed to parse verbose JSON response: %v", err)
	}
	if resp.Error != "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeInvalidFile, false, nil, "server error: %s", resp.Error)
	}

	language := lo.CoalesceOrEmpty(resp.Language, resp.DetectedLanguage)
	if language == "" {
		return nil, provider.NewTranscriptionError(providerName, provider.CodeMissingLanguage, false, nil,
			"response has no detected language")
	}

	segments := lo.Map(resp.Segments, func(s WhisperServerSegment, _ int) provider.TranscriptionSegment {
		return provider.TranscriptionSegment{ID: s.ID, Text: s.Text, Start: s.Start, End: s.End}
	})

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = provider.JoinSegments(segments)
	}

	return &provider.TranscriptionResponse{
		Text:     text,
		Language: language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
		Segments: segments,
	}, nil
}

// createMultipartForm creates the multipart form for the API request
func (wsp *WhisperServerProvider) createMultipartForm(request *provider.TranscriptionRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(request.InputFilePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}

	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"temperature", fmt.Sprintf("%.2f", wsp.config.Temperature)},
		{"language", lo.CoalesceOrEmpty(request.Language, wsp.config.Language)},
	}
	if request.Prompt != "" {
		fields = append(fields, [2]string{"prompt", request.Prompt})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func (wsp *WhisperServerProvider) setHeaders(req *http.Request) {
	for key, value := range wsp.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}

// LoadModel asks the server to load the configured model. Without a
// model_path it only checks that the server answers.
func (wsp *WhisperServerProvider) LoadModel(ctx context.Context) error {
	if wsp.config.ModelPath == "" {
		return wsp.ping(ctx)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", wsp.config.ModelPath); err != nil {
		return fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.LoadPath, body)
	if err != nil {
		return fmt.Errorf("failed to create load model request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return provider.NewTranscriptionError(providerName, provider.CodeModelLoadError, true, err,
			"load model request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return provider.NewTranscriptionError(providerName, provider.CodeModelLoadError, false, nil,
			"load model failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	wsp.logger.Info("model loaded", zap.String("model", wsp.config.ModelPath))
	return nil
}

func (wsp *WhisperServerProvider) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return provider.NewTranscriptionError(providerName, provider.CodeNetworkError, true, err,
			"server connectivity test failed: %v", err)
	}
	defer resp.Body.Close()

	// 503 can come from a proxy in front of a server that is still running
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return provider.NewTranscriptionError(providerName, provider.CodeHTTPError, true, nil,
			"server returned error status: %d", resp.StatusCode)
	}
	return nil
}

// GetProviderInfo returns metadata about the whisper server provider
func (wsp *WhisperServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                      providerName,
		DisplayName:               "Whisper Server (HTTP API)",
		Type:                      provider.ProviderTypeRemote,
		SupportedFormats:          provider.AllAudioFormats(),
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
		DefaultModel:              "whisper-server",
	}
}

// ValidateConfiguration validates the provider configuration
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if wsp.config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(wsp.config.BaseURL, "http://") && !strings.HasPrefix(wsp.config.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://")
	}
	if wsp.config.Temperature < 0.0 || wsp.config.Temperature > 1.0 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck performs a health check on the provider
func (wsp *WhisperServerProvider) HealthCheck(ctx context.Context) error {
	if err := wsp.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return wsp.ping(ctx)
}
