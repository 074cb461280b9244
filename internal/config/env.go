package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
}

// envPaths are tried in order; the first existing file wins.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads environment variables from the first .env file found.
// A missing file is not an error: variables may be set system-wide.
// Variables already present in the environment are never overwritten.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: %w", err)
		}
	}

	return apiKeys, nil
}

// RequireAPIKeys fails when the openai provider is selected without a key.
func RequireAPIKeys(apiKeys *APIKeys, providerName string) error {
	if providerName == "openai" && apiKeys.OpenAI == "" {
		return fmt.Errorf("the openai provider requires OPENAI_API_KEY in environment or .env file")
	}
	return nil
}

// InitializeConfig loads environment and validates API keys.
// It returns the .env path that was loaded, if any.
func InitializeConfig() (*APIKeys, string, error) {
	loaded, err := LoadEnv()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, loaded, fmt.Errorf("failed to get API keys: %w", err)
	}

	return apiKeys, loaded, nil
}
