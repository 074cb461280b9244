package dto

import (
	"time"

	"speech-whisper/internal/app/pipeline"
)

// RecordRequest asks the server to record from its microphone.
type RecordRequest struct {
	DurationSeconds int `json:"duration_seconds" binding:"omitempty,min=1,max=600"`
}

// TranscriptionResponse is returned by both record and upload.
type TranscriptionResponse struct {
	Language         string             `json:"language"`
	Text             string             `json:"text"`
	Provider         string             `json:"provider,omitempty"`
	Model            string             `json:"model,omitempty"`
	Source           string             `json:"source"`
	AudioDurationSec float64            `json:"audio_duration_sec,omitempty"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	Transcript       TranscriptResponse `json:"transcript"`
}

// TranscriptResponse describes the saved transcript file.
type TranscriptResponse struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updated_at"`
	DownloadURL string    `json:"download_url"`
}

// StatusResponse mirrors the pipeline status.
type StatusResponse struct {
	Stage          string    `json:"stage"`
	Indicator      string    `json:"indicator"`
	Action         string    `json:"action,omitempty"`
	Busy           bool      `json:"busy"`
	Language       string    `json:"language,omitempty"`
	Text           string    `json:"text,omitempty"`
	TranscriptName string    `json:"transcript_name,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	DurationSec    int       `json:"duration_sec,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToTranscriptionResponse converts a pipeline outcome to the response DTO
func ToTranscriptionResponse(o *pipeline.Outcome, downloadURL string) *TranscriptionResponse {
	resp := &TranscriptionResponse{
		Language:         o.Result.Language,
		Text:             o.Result.Text,
		Provider:         o.Result.Provider,
		Model:            o.Result.Model,
		Source:           string(o.Asset.Origin),
		AudioDurationSec: o.Asset.Duration.Seconds(),
		ProcessingTimeMs: o.Result.ProcessingTime.Milliseconds(),
	}
	if o.Transcript != nil {
		resp.Transcript = TranscriptResponse{
			Name:        o.Transcript.Name,
			Size:        o.Transcript.Size,
			UpdatedAt:   o.Transcript.ModTime,
			DownloadURL: downloadURL,
		}
	}
	return resp
}

// ToStatusResponse converts a pipeline snapshot to the response DTO
func ToStatusResponse(s pipeline.Snapshot) StatusResponse {
	return StatusResponse{
		Stage:          string(s.Stage),
		Indicator:      string(s.Indicator),
		Action:         string(s.Action),
		Busy:           s.Busy,
		Language:       s.Language,
		Text:           s.Text,
		TranscriptName: s.TranscriptName,
		ErrorKind:      string(s.ErrorKind),
		ErrorMessage:   s.ErrorMessage,
		DurationSec:    s.DurationSec,
		UpdatedAt:      s.UpdatedAt,
	}
}
