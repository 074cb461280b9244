package provider

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatWEBM AudioFormat = "webm"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// LanguageAuto asks the model to detect the spoken language.
const LanguageAuto = "auto"

// TranscriptionRequest represents a transcription request
type TranscriptionRequest struct {
	InputFilePath string `json:"input_file_path"`

	Language string `json:"language,omitempty"` // "en", "auto", etc.
	Model    string `json:"model,omitempty"`    // provider-specific model ID

	Temperature float32 `json:"temperature,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`

	// Already known to be 16 kHz mono 16-bit PCM WAV; lets local
	// providers skip conversion.
	Is16kHzMonoWav bool `json:"-"`
}

// TranscriptionResponse represents the response from a transcription provider
type TranscriptionResponse struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`

	Segments []TranscriptionSegment `json:"segments,omitempty"`

	ProcessingTime time.Duration `json:"processing_time,omitempty"`
	ModelUsed      string        `json:"model_used,omitempty"`
}

// TranscriptionSegment represents a time-segmented piece of transcription
type TranscriptionSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// JoinSegments concatenates segment text into one unsegmented transcript.
func JoinSegments(segments []TranscriptionSegment) string {
	parts := lo.FilterMap(segments, func(s TranscriptionSegment, _ int) (string, bool) {
		text := strings.TrimSpace(s.Text)
		return text, text != ""
	})
	return strings.Join(parts, " ")
}

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`

	SupportedFormats []AudioFormat `json:"supported_formats"`
	MaxFileSizeMB    int           `json:"max_file_size_mb,omitempty"` // 0 means no limit

	SupportsLanguageDetection bool `json:"supports_language_detection"`

	RequiresInternet bool `json:"requires_internet"`
	RequiresAPIKey   bool `json:"requires_api_key"`
	RequiresBinary   bool `json:"requires_binary"`

	DefaultModel string `json:"default_model,omitempty"`
}

// Error codes shared by providers. The engine classifies the decode-related
// ones as DecodeError and everything else as InferenceError.
const (
	CodeInvalidInput      = "invalid_input"
	CodeInvalidFile       = "invalid_file"
	CodeDecodeError       = "decode_error"
	CodeUnsupportedFormat = "unsupported_format"
	CodeFileNotFound      = "file_not_found"
	CodeModelNotLoaded    = "model_not_loaded"
	CodeModelLoadError    = "model_load_error"
	CodeExecutionError    = "execution_error"
	CodeOutputError       = "output_error"
	CodeNetworkError      = "network_error"
	CodeHTTPError         = "http_error"
	CodeAPIError          = "api_error"
	CodeTimeout           = "timeout"
	CodeMissingLanguage   = "missing_language"
)

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	Retryable bool   `json:"retryable"`
	Cause     error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// NewTranscriptionError builds a TranscriptionError with a formatted message.
func NewTranscriptionError(providerName, code string, retryable bool, cause error, format string, args ...interface{}) *TranscriptionError {
	return &TranscriptionError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Provider:  providerName,
		Retryable: retryable,
		Cause:     cause,
	}
}

// IsDecodeCode reports whether code means the input audio was the problem.
func IsDecodeCode(code string) bool {
	return lo.Contains([]string{CodeInvalidFile, CodeDecodeError, CodeUnsupportedFormat}, code)
}

// IsValidAudioFormat checks if the given format is supported
func IsValidAudioFormat(format string) bool {
	return lo.Contains(AllAudioFormats(), AudioFormat(strings.ToLower(format)))
}

// AllAudioFormats lists every format a provider may declare.
func AllAudioFormats() []AudioFormat {
	return []AudioFormat{FormatWAV, FormatMP3, FormatM4A, FormatFLAC, FormatOGG, FormatWEBM}
}

// GetAudioFormatFromFilename extracts audio format from filename
func GetAudioFormatFromFilename(filename string) AudioFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if IsValidAudioFormat(ext) {
		return AudioFormat(ext)
	}
	return ""
}
