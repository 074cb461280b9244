package whisper_cpp

import (
	"fmt"
	"path/filepath"

	"speech-whisper/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.Settings(config)

	modelPath := provider.StringValue(settings, "model_path")
	if modelPath == "" {
		// "model: base" resolves to the conventional ggml file name
		model := provider.StringValue(settings, "model")
		if model == "" {
			return nil, fmt.Errorf("whisper_cpp provider requires 'model_path' or 'model' setting")
		}
		modelPath = filepath.Join(provider.StringValue(settings, "models_dir"), "ggml-"+model+".bin")
	}

	return NewLocalTranscriber(Config{
		BinaryPath: provider.StringValue(settings, "binary_path"),
		ModelPath:  modelPath,
		Language:   provider.StringValue(settings, "language"),
		Prompt:     provider.StringValue(settings, "prompt"),
		Threads:    provider.IntValue(settings, "threads", 0),
		TempDir:    provider.StringValue(settings, "temp_dir"),
		FFmpegPath: provider.StringValue(settings, "ffmpeg_path"),
	}), nil
}
