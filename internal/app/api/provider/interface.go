package provider

import (
	"context"
)

// TranscriptionProvider is implemented by every speech-to-text backend.
type TranscriptionProvider interface {
	// TranscriptWithOptions transcribes one audio file.
	TranscriptWithOptions(ctx context.Context, request *TranscriptionRequest) (*TranscriptionResponse, error)

	// GetProviderInfo describes the backend and its capabilities.
	GetProviderInfo() ProviderInfo

	// ValidateConfiguration checks settings without touching the backend.
	ValidateConfiguration() error

	// HealthCheck verifies the backend is reachable and usable.
	HealthCheck(ctx context.Context) error
}

// ModelLoader is implemented by providers that must load a model before
// the first request. LoadModel may be called more than once; callers
// guarantee it is not called concurrently.
type ModelLoader interface {
	LoadModel(ctx context.Context) error
}

// ProviderMetrics records per-provider usage.
type ProviderMetrics interface {
	RecordSuccess(provider string, latencyMs int64, audioLengthSec float64)
	RecordFailure(provider string, errorType string)
	GetProviderMetrics(provider string) ProviderStats
	GetOverallMetrics() OverallStats
}

// ProviderStats contains statistics for a specific provider
type ProviderStats struct {
	Provider            string           `json:"provider"`
	TotalRequests       int64            `json:"total_requests"`
	SuccessfulRequests  int64            `json:"successful_requests"`
	FailedRequests      int64            `json:"failed_requests"`
	SuccessRate         float64          `json:"success_rate"`
	AverageLatencyMs    float64          `json:"average_latency_ms"`
	TotalAudioProcessed float64          `json:"total_audio_processed_sec"`
	LastUsed            int64            `json:"last_used_timestamp"`
	IsHealthy           bool             `json:"is_healthy"`
	ErrorBreakdown      map[string]int64 `json:"error_breakdown"`
}

// OverallStats contains overall transcription statistics
type OverallStats struct {
	TotalProviders     int                      `json:"total_providers"`
	TotalRequests      int64                    `json:"total_requests"`
	SuccessfulRequests int64                    `json:"successful_requests"`
	OverallSuccessRate float64                  `json:"overall_success_rate"`
	FastestProvider    string                   `json:"fastest_provider"`
	ProviderStats      map[string]ProviderStats `json:"provider_stats"`
}
