package pipeline

import (
	"time"

	apperrors "speech-whisper/internal/app/errors"
)

// Stage is where the current action is in its lifecycle.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageCapturing    Stage = "capturing"
	StageUploading    Stage = "uploading"
	StageAssetReady   Stage = "asset_ready"
	StageTranscribing Stage = "transcribing"
	StageResultReady  Stage = "result_ready"
)

// Indicator is the user-facing status shown by the shells.
type Indicator string

const (
	IndicatorIdle         Indicator = "idle"
	IndicatorRecording    Indicator = "recording"
	IndicatorUploading    Indicator = "uploading"
	IndicatorTranscribing Indicator = "transcribing"
	IndicatorSuccess      Indicator = "success"
	IndicatorError        Indicator = "error"
)

// Action names the two user-triggered operations.
type Action string

const (
	ActionRecord Action = "record"
	ActionUpload Action = "upload"
)

// Snapshot is a copy of the pipeline status at one point in time.
type Snapshot struct {
	Stage     Stage     `json:"stage"`
	Indicator Indicator `json:"indicator"`
	Action    Action    `json:"action,omitempty"`
	Busy      bool      `json:"busy"`

	// Language and Text are set only while the latest action has succeeded.
	// TranscriptName stays the last saved file, which failures never touch.
	Language       string `json:"language,omitempty"`
	Text           string `json:"text,omitempty"`
	TranscriptName string `json:"transcript_name,omitempty"`

	// Populated by the last failed action.
	ErrorKind    apperrors.Kind `json:"error_kind,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`

	// DurationSec is the requested recording length while recording.
	DurationSec int       `json:"duration_sec,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
