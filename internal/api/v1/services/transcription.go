package services

import (
	"context"
	"fmt"
	"io"

	"speech-whisper/internal/api/errors"
	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/pipeline"
)

// TranscriptDownloadPath is where the saved transcript can be fetched.
const TranscriptDownloadPath = "/api/v1/transcript"

// Pipeline is the part of *pipeline.Pipeline the API needs
type Pipeline interface {
	RecordAndTranscribe(ctx context.Context, durationSec int) (*pipeline.Outcome, error)
	TranscribeUpload(ctx context.Context, r io.Reader, originalName string) (*pipeline.Outcome, error)
	Status() pipeline.Snapshot
}

// TranscriptReader opens the saved transcript
type TranscriptReader interface {
	Open(fileName string) (io.ReadCloser, *model.TranscriptFile, error)
}

// RecordingLimits bounds the duration a client may request
type RecordingLimits struct {
	MinDurationSec     int
	MaxDurationSec     int
	DefaultDurationSec int
}

// TranscriptionServiceImpl implements TranscriptionService
type TranscriptionServiceImpl struct {
	pipeline    Pipeline
	transcripts TranscriptReader
	limits      RecordingLimits
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(p Pipeline, transcripts TranscriptReader, limits RecordingLimits) TranscriptionService {
	return &TranscriptionServiceImpl{
		pipeline:    p,
		transcripts: transcripts,
		limits:      limits,
	}
}

// Record records from the server microphone; 0 means the default duration
func (s *TranscriptionServiceImpl) Record(ctx context.Context, durationSec int) (*dto.TranscriptionResponse, error) {
	if durationSec == 0 {
		durationSec = s.limits.DefaultDurationSec
	}
	if durationSec < s.limits.MinDurationSec || durationSec > s.limits.MaxDurationSec {
		return nil, errors.NewValidationError("Validation failed", map[string]string{
			"duration_seconds": fmt.Sprintf("must be between %d and %d", s.limits.MinDurationSec, s.limits.MaxDurationSec),
		})
	}

	outcome, err := s.pipeline.RecordAndTranscribe(ctx, durationSec)
	if err != nil {
		return nil, err
	}
	return dto.ToTranscriptionResponse(outcome, TranscriptDownloadPath), nil
}

// Upload transcribes an uploaded audio file
func (s *TranscriptionServiceImpl) Upload(ctx context.Context, r io.Reader, fileName string) (*dto.TranscriptionResponse, error) {
	outcome, err := s.pipeline.TranscribeUpload(ctx, r, fileName)
	if err != nil {
		return nil, err
	}
	return dto.ToTranscriptionResponse(outcome, TranscriptDownloadPath), nil
}

// Status returns the pipeline status
func (s *TranscriptionServiceImpl) Status(ctx context.Context) dto.StatusResponse {
	return dto.ToStatusResponse(s.pipeline.Status())
}

// OpenTranscript opens the last saved transcript
func (s *TranscriptionServiceImpl) OpenTranscript(ctx context.Context) (io.ReadCloser, *model.TranscriptFile, error) {
	return s.transcripts.Open("")
}
