package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidateTimeout validates timeout duration. Zero means no timeout.
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout < 0 {
		return fmt.Errorf("%s timeout cannot be negative", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateDurationRange validates a recording duration bound pair
func ValidateDurationRange(minSec, maxSec, defaultSec int) error {
	if minSec <= 0 {
		return fmt.Errorf("minimum recording duration must be positive")
	}
	if maxSec < minSec {
		return fmt.Errorf("maximum recording duration %d is below minimum %d", maxSec, minSec)
	}
	if defaultSec < minSec || defaultSec > maxSec {
		return fmt.Errorf("default recording duration %d outside [%d, %d]", defaultSec, minSec, maxSec)
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("too short")
		}
	}

	return nil
}
