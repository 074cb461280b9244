package whisper_server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speech-whisper/internal/app/api/provider"
)

type serverCall struct {
	path           string
	responseFormat string
	language       string
	fileName       string
	model          string
	auth           string
}

func newMockWhisperServer(t *testing.T, status int, body interface{}) (*httptest.Server, *[]serverCall) {
	t.Helper()
	var calls []serverCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := serverCall{path: r.URL.Path, auth: r.Header.Get("Authorization")}
		switch r.URL.Path {
		case "/inference":
			assert.NoError(t, r.ParseMultipartForm(10<<20))
			if _, header, err := r.FormFile("file"); assert.NoError(t, err) {
				call.fileName = header.Filename
			}
			call.responseFormat = r.FormValue("response_format")
			call.language = r.FormValue("language")
		case "/load":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			call.model = r.FormValue("model")
		}
		calls = append(calls, call)

		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			w.Write([]byte(b))
		default:
			json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uploaded_audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 fake mp3 payload"), 0o644))
	return path
}

func TestTranscriptWithOptions(t *testing.T) {
	srv, calls := newMockWhisperServer(t, http.StatusOK, WhisperServerResponse{
		Task:     "transcribe",
		Language: "english",
		Duration: 5.2,
		Text:     " This is a test transcription. ",
		Segments: []WhisperServerSegment{{ID: 0, Text: "This is a test transcription.", End: 5.2}},
	})

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: srv.URL + "/"})
	resp, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{
		InputFilePath: writeAudio(t),
		Language:      provider.LanguageAuto,
	})
	require.NoError(t, err)

	assert.Equal(t, "english", resp.Language)
	assert.Equal(t, "This is a test transcription.", resp.Text)
	assert.Equal(t, 5200*time.Millisecond, resp.Duration)
	require.Len(t, *calls, 1)
	assert.Equal(t, "verbose_json", (*calls)[0].responseFormat)
	assert.Equal(t, "auto", (*calls)[0].language)
	assert.Equal(t, "uploaded_audio.mp3", (*calls)[0].fileName)
}

func TestTranscriptWithOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   interface{}
		code   string
	}{
		{"bad audio", http.StatusBadRequest, `{"error":"failed to read audio data"}`, provider.CodeInvalidFile},
		{"server crash", http.StatusInternalServerError, "boom", provider.CodeHTTPError},
		{"throttled", http.StatusTooManyRequests, "slow down", provider.CodeHTTPError},
		{"not json", http.StatusOK, "<html>", provider.CodeOutputError},
		{"no language", http.StatusOK, WhisperServerResponse{Text: "hi"}, provider.CodeMissingLanguage},
		{"error in body", http.StatusOK, `{"error":"unsupported audio format"}`, provider.CodeInvalidFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newMockWhisperServer(t, tt.status, tt.body)
			wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: srv.URL})

			_, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: writeAudio(t)})
			var terr *provider.TranscriptionError
			require.True(t, errors.As(err, &terr), "got %v", err)
			assert.Equal(t, tt.code, terr.Code)
		})
	}
}

func TestTranscriptWithOptionsUnreachable(t *testing.T) {
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: writeAudio(t)})

	var terr *provider.TranscriptionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, provider.CodeNetworkError, terr.Code)
	assert.True(t, terr.Retryable)
}

func TestParseResponseFallsBackToSegments(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"detected_language":"de","segments":[{"text":" Guten"},{"text":"Tag "}]}`))
	require.NoError(t, err)
	assert.Equal(t, "de", resp.Language)
	assert.Equal(t, "Guten Tag", resp.Text)
}

func TestLoadModel(t *testing.T) {
	srv, calls := newMockWhisperServer(t, http.StatusOK, "Load was successful!")

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: srv.URL, ModelPath: "models/ggml-base.bin"})
	require.NoError(t, wsp.LoadModel(context.Background()))
	require.Len(t, *calls, 1)
	assert.Equal(t, "/load", (*calls)[0].path)
	assert.Equal(t, "models/ggml-base.bin", (*calls)[0].model)

	wsp = NewWhisperServerProvider(WhisperServerConfig{BaseURL: srv.URL})
	require.NoError(t, wsp.LoadModel(context.Background()))
	assert.Equal(t, "/", (*calls)[1].path)
}

func TestLoadModelFailure(t *testing.T) {
	srv, _ := newMockWhisperServer(t, http.StatusInternalServerError, "model not found")
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: srv.URL, ModelPath: "missing.bin"})

	err := wsp.LoadModel(context.Background())
	assert.ErrorContains(t, err, "model not found")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  WhisperServerConfig
		wantErr bool
	}{
		{"valid", WhisperServerConfig{BaseURL: "http://localhost:8080"}, false},
		{"missing url", WhisperServerConfig{}, true},
		{"bad scheme", WhisperServerConfig{BaseURL: "ftp://x"}, true},
		{"bad temperature", WhisperServerConfig{BaseURL: "http://x", Temperature: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewWhisperServerProvider(tt.config).ValidateConfiguration()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateFromSettingsWithToken(t *testing.T) {
	srv, calls := newMockWhisperServer(t, http.StatusOK, WhisperServerResponse{Language: "en"})

	p, err := provider.CreateProvider(providerName, map[string]interface{}{
		"settings": map[string]interface{}{"base_url": srv.URL, "timeout": 10},
		"auth":     map[string]interface{}{"token": "secret"},
	})
	require.NoError(t, err)

	_, err = p.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: writeAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", (*calls)[0].auth)

	_, err = provider.CreateProvider(providerName, map[string]interface{}{"settings": map[string]interface{}{}})
	assert.Error(t, err)
}
