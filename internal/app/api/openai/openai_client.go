package openai

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ClientConfig holds what is needed to talk to OpenAI or an
// OpenAI-compatible server.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Organization string
	Timeout      time.Duration
}

// NewClient builds a go-openai client; an empty BaseURL means api.openai.com.
func NewClient(config ClientConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Organization != "" {
		clientConfig.OrgID = config.Organization
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return openai.NewClientWithConfig(clientConfig)
}
