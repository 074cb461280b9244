package whisper

import (
	"fmt"
	"time"

	"speech-whisper/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration
func createOpenAIProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.Settings(config)

	apiKey := provider.StringValue(provider.Auth(config), "api_key")
	if apiKey == "" {
		apiKey = provider.StringValue(config, "api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires 'api_key' in auth configuration")
	}

	temperature, _ := settings["temperature"].(float64)

	return NewRemoteTranscriber(OpenAIProviderConfig{
		APIKey:       apiKey,
		Model:        provider.StringValue(settings, "model"),
		Language:     provider.StringValue(settings, "language"),
		Temperature:  float32(temperature),
		Prompt:       provider.StringValue(settings, "prompt"),
		BaseURL:      provider.StringValue(settings, "base_url"),
		Organization: provider.StringValue(settings, "organization"),
		Timeout:      time.Duration(provider.IntValue(settings, "timeout", 0)) * time.Second,
	}), nil
}
