package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"speech-whisper/internal/app/api/provider"
)

// MockProvider is a testify mock of a provider that loads a model.
type MockProvider struct {
	mock.Mock
	Info provider.ProviderInfo
}

// NewMockProvider creates a MockProvider named name.
func NewMockProvider(t *testing.T, name string) *MockProvider {
	m := &MockProvider{Info: provider.ProviderInfo{Name: name, SupportsLanguageDetection: true}}
	m.Test(t)
	return m
}

func (m *MockProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TranscriptionResponse), args.Error(1)
}

func (m *MockProvider) GetProviderInfo() provider.ProviderInfo {
	return m.Info
}

func (m *MockProvider) ValidateConfiguration() error {
	return nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) LoadModel(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ provider.TranscriptionProvider = (*MockProvider)(nil)
	_ provider.ModelLoader           = (*MockProvider)(nil)
)
