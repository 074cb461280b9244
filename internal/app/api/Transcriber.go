package api

import (
	"context"

	"speech-whisper/internal/app/model"

	// Providers register themselves with the provider registry on import.
	_ "speech-whisper/internal/app/api/openai/whisper"
	_ "speech-whisper/internal/app/api/whisper_cpp"
	_ "speech-whisper/internal/app/api/whisper_server"
)

// Transcriber turns an audio asset into its detected language and text.
type Transcriber interface {
	Transcribe(ctx context.Context, asset model.AudioAsset) (model.TranscriptionResult, error)
}
