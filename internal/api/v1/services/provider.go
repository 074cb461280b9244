package services

import (
	"context"
	"time"

	"github.com/samber/lo"

	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/app/api/provider"
)

// Engine is the part of *engine.Engine the API needs
type Engine interface {
	ProviderName() string
	Loaded() bool
	Metrics() provider.ProviderMetrics
	HealthCheck(ctx context.Context) error
}

// ProviderServiceImpl implements ProviderService and HealthService
type ProviderServiceImpl struct {
	engine        Engine
	healthTimeout time.Duration
}

// NewProviderService creates a new provider service
func NewProviderService(engine Engine) *ProviderServiceImpl {
	return &ProviderServiceImpl{
		engine:        engine,
		healthTimeout: 5 * time.Second,
	}
}

// ListProviders lists the registered providers and marks the active one
func (s *ProviderServiceImpl) ListProviders(ctx context.Context) ([]dto.ProviderResponse, error) {
	active := s.engine.ProviderName()
	overall := s.engine.Metrics().GetOverallMetrics()

	return lo.Map(provider.ListRegisteredProviders(), func(name string, _ int) dto.ProviderResponse {
		resp := dto.ProviderResponse{Name: name, Active: name == active}
		if stats, ok := overall.ProviderStats[name]; ok {
			resp.Stats = &stats
		}
		return resp
	}), nil
}

// Health checks the active provider
func (s *ProviderServiceImpl) Health(ctx context.Context) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "healthy",
		Provider:  s.engine.ProviderName(),
		Timestamp: time.Now(),
	}
	if err := s.engine.HealthCheck(ctx); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
	}
	resp.ModelLoaded = s.engine.Loaded()
	return resp
}
