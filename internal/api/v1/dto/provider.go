package dto

import (
	"time"

	"speech-whisper/internal/app/api/provider"
)

// ProviderResponse represents a registered provider in API responses
type ProviderResponse struct {
	Name   string                  `json:"name"`
	Active bool                    `json:"active"`
	Stats  *provider.ProviderStats `json:"stats,omitempty"`
}

// HealthResponse reports whether the server can transcribe.
type HealthResponse struct {
	Status      string    `json:"status"`
	Provider    string    `json:"provider"`
	ModelLoaded bool      `json:"model_loaded"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
