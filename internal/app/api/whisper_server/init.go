package whisper_server

import (
	"fmt"
	"time"

	"speech-whisper/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.Settings(config)

	baseURL := provider.StringValue(settings, "base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("whisper_server provider requires 'base_url' setting")
	}

	headers := make(map[string]string)
	if raw, ok := settings["custom_headers"].(map[string]interface{}); ok {
		for k, v := range raw {
			if str, ok := v.(string); ok {
				headers[k] = str
			}
		}
	}
	if token := provider.StringValue(provider.Auth(config), "token"); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	temperature, _ := settings["temperature"].(float64)

	return NewWhisperServerProvider(WhisperServerConfig{
		BaseURL:       baseURL,
		InferencePath: provider.StringValue(settings, "inference_path"),
		LoadPath:      provider.StringValue(settings, "load_path"),
		ModelPath:     provider.StringValue(settings, "model_path"),
		Timeout:       time.Duration(provider.IntValue(settings, "timeout", 0)) * time.Second,
		Language:      provider.StringValue(settings, "language"),
		Temperature:   temperature,
		CustomHeaders: headers,
	}), nil
}
