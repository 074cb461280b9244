package model

import "time"

// TranscriptionResult is the outcome of transcribing one asset. It is
// produced once and never mutated.
type TranscriptionResult struct {
	Language       string        `json:"language"`
	Text           string        `json:"text"`
	Provider       string        `json:"provider,omitempty"`
	Model          string        `json:"model,omitempty"`
	ProcessingTime time.Duration `json:"processing_time,omitempty"`
}

// TranscriptFile is the saved, downloadable transcript.
type TranscriptFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
