package test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"speech-whisper/internal/api/errors"
	"speech-whisper/internal/api/middleware"
	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/api/v1/handlers"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/testutil"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *testutil.MockServices) {
	gin.SetMode(gin.TestMode)
	middleware.UseJSONFieldNames()
	router := gin.New()
	router.Use(middleware.RequestID())
	mockServices := testutil.NewMockServices(t)
	return router, mockServices
}

func sampleResponse(source string) *dto.TranscriptionResponse {
	return &dto.TranscriptionResponse{
		Language: "en",
		Text:     "hello world",
		Provider: "whisper_cpp",
		Source:   source,
		Transcript: dto.TranscriptResponse{
			Name:        "transcription.txt",
			Size:        11,
			DownloadURL: "/api/v1/transcript",
		},
	}
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file here"))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestTranscriptionHandler_Record(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*testutil.MockServices)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "successful recording",
			body: `{"duration_seconds": 5}`,
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Record", mock.Anything, 5).Return(sampleResponse("recorded"), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "en", body["language"])
				assert.Equal(t, "hello world", body["text"])
				assert.Equal(t, "recorded", body["source"])
				transcript := body["transcript"].(map[string]interface{})
				assert.Equal(t, "/api/v1/transcript", transcript["download_url"])
			},
		},
		{
			name: "empty body uses default duration",
			body: "",
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Record", mock.Anything, 0).Return(sampleResponse("recorded"), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "en", body["language"])
			},
		},
		{
			name:           "validation error - negative duration",
			body:           `{"duration_seconds": -1}`,
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
				details := body["details"].(map[string]interface{})
				assert.Contains(t, details, "duration_seconds")
			},
		},
		{
			name: "microphone unavailable",
			body: `{"duration_seconds": 3}`,
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Record", mock.Anything, 3).
					Return(nil, apperrors.NewKind(apperrors.KindCapture, "microphone unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "capture", body["kind"])
				assert.Equal(t, "capture_failed", body["code"])
				assert.NotEmpty(t, body["request_id"])
			},
		},
		{
			name: "pipeline busy",
			body: `{"duration_seconds": 3}`,
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Record", mock.Anything, 3).Return(nil, apperrors.ErrBusy)
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "busy", body["kind"])
			},
		},
		{
			name: "inference failure",
			body: `{"duration_seconds": 3}`,
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Record", mock.Anything, 3).
					Return(nil, apperrors.NewKind(apperrors.KindInference, "model crashed"))
			},
			expectedStatus: http.StatusBadGateway,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "inference", body["kind"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockServices := setupTestRouter(t)
			tt.setupMocks(mockServices)

			handler := handlers.NewTranscriptionHandler(mockServices.TranscriptionService, 25)
			router.POST("/api/v1/recordings", handler.Record)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/recordings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var responseBody map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &responseBody))
			tt.validateBody(t, responseBody)
			mockServices.TranscriptionService.AssertExpectations(t)
		})
	}
}

func TestTranscriptionHandler_Upload(t *testing.T) {
	audio := []byte("ID3\x03\x00fake mp3 payload")

	tests := []struct {
		name           string
		field          string
		fileName       string
		content        []byte
		maxUploadMB    int
		setupMocks     func(*testutil.MockServices)
		expectedStatus int
		expectedKind   string
	}{
		{
			name:     "successful upload",
			field:    "file",
			fileName: "memo.mp3",
			content:  audio,
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Upload", mock.Anything, audio, "memo.mp3").Return(sampleResponse("uploaded"), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no file field",
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   string(errors.KindBadRequest),
		},
		{
			name:     "undecodable audio",
			field:    "file",
			fileName: "notes.txt",
			content:  []byte("plain text"),
			setupMocks: func(ms *testutil.MockServices) {
				ms.TranscriptionService.On("Upload", mock.Anything, []byte("plain text"), "notes.txt").
					Return(nil, apperrors.Newf(apperrors.KindDecode, "unsupported content type text/plain"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "decode",
		},
		{
			name:           "too large",
			field:          "file",
			fileName:       "big.wav",
			content:        bytes.Repeat([]byte{0}, 2<<20),
			maxUploadMB:    1,
			setupMocks:     func(ms *testutil.MockServices) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedKind:   string(errors.KindPayloadTooLarge),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockServices := setupTestRouter(t)
			tt.setupMocks(mockServices)

			maxMB := tt.maxUploadMB
			if maxMB == 0 {
				maxMB = 25
			}
			handler := handlers.NewTranscriptionHandler(mockServices.TranscriptionService, maxMB)
			router.POST("/api/v1/transcriptions/upload", handler.Upload)

			body, contentType := multipartBody(t, tt.field, tt.fileName, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var responseBody map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &responseBody))
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, responseBody["kind"])
			} else {
				assert.Equal(t, "uploaded", responseBody["source"])
			}
			mockServices.TranscriptionService.AssertExpectations(t)
		})
	}
}

func TestTranscriptionHandler_Status(t *testing.T) {
	router, mockServices := setupTestRouter(t)
	mockServices.TranscriptionService.On("Status", mock.Anything).Return(dto.StatusResponse{
		Stage:     "transcribing",
		Indicator: "transcribing",
		Action:    "upload",
		Busy:      true,
		UpdatedAt: time.Now(),
	})

	handler := handlers.NewTranscriptionHandler(mockServices.TranscriptionService, 25)
	router.GET("/api/v1/status", handler.Status)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "transcribing", body.Indicator)
	assert.True(t, body.Busy)
}

func TestTranscriptionHandler_Transcript(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		router, mockServices := setupTestRouter(t)
		content := "bonjour tout le monde"
		mockServices.TranscriptionService.On("OpenTranscript", mock.Anything).Return(
			io.NopCloser(strings.NewReader(content)),
			&model.TranscriptFile{Name: "transcription.txt", Size: int64(len(content))},
			nil,
		)

		handler := handlers.NewTranscriptionHandler(mockServices.TranscriptionService, 25)
		router.GET("/api/v1/transcript", handler.Transcript)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcript", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, content, rec.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="transcription.txt"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("nothing saved yet", func(t *testing.T) {
		router, mockServices := setupTestRouter(t)
		mockServices.TranscriptionService.On("OpenTranscript", mock.Anything).Return(nil, nil, apperrors.ErrNoTranscript)

		handler := handlers.NewTranscriptionHandler(mockServices.TranscriptionService, 25)
		router.GET("/api/v1/transcript", handler.Transcript)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcript", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "no_transcript", body["code"])
	})
}
