package services

import (
	"context"
	"io"

	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/app/model"
)

// TranscriptionService defines the record/upload/status/download operations
type TranscriptionService interface {
	Record(ctx context.Context, durationSec int) (*dto.TranscriptionResponse, error)
	Upload(ctx context.Context, r io.Reader, fileName string) (*dto.TranscriptionResponse, error)
	Status(ctx context.Context) dto.StatusResponse
	OpenTranscript(ctx context.Context) (io.ReadCloser, *model.TranscriptFile, error)
}

// ProviderService defines the interface for provider operations
type ProviderService interface {
	ListProviders(ctx context.Context) ([]dto.ProviderResponse, error)
}

// HealthService reports whether transcription is possible
type HealthService interface {
	Health(ctx context.Context) dto.HealthResponse
}
