package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/api/v1/handlers"
	"speech-whisper/internal/app/api/provider"
)

func TestProviderHandler_List(t *testing.T) {
	router, mockServices := setupTestRouter(t)
	mockServices.ProviderService.On("ListProviders", mock.Anything).Return([]dto.ProviderResponse{
		{Name: "openai", Active: false},
		{Name: "whisper_cpp", Active: true, Stats: &provider.ProviderStats{Provider: "whisper_cpp", TotalRequests: 3}},
	}, nil)

	handler := handlers.NewProviderHandler(mockServices.ProviderService, mockServices.HealthService)
	router.GET("/api/v1/providers", handler.List)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Providers []dto.ProviderResponse `json:"providers"`
		Total     int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.True(t, body.Providers[1].Active)
	assert.Equal(t, int64(3), body.Providers[1].Stats.TotalRequests)
}

func TestProviderHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		response       dto.HealthResponse
		expectedStatus int
	}{
		{"healthy", dto.HealthResponse{Status: "healthy", Provider: "whisper_cpp", ModelLoaded: true, Timestamp: time.Now()}, http.StatusOK},
		{"degraded", dto.HealthResponse{Status: "degraded", Provider: "whisper_cpp", Error: "model missing", Timestamp: time.Now()}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockServices := setupTestRouter(t)
			mockServices.HealthService.On("Health", mock.Anything).Return(tt.response)

			handler := handlers.NewProviderHandler(mockServices.ProviderService, mockServices.HealthService)
			router.GET("/health", handler.Health)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body dto.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.response.Status, body.Status)
		})
	}
}
