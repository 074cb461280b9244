package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"speech-whisper/internal/app/api/provider"
	"speech-whisper/internal/app/audio"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/testutil"
)

func newTestEngine(t *testing.T, p *testutil.MockProvider, timeout time.Duration) *Engine {
	t.Helper()
	return NewWithProvider(p, Config{Language: "auto", Timeout: timeout}, audio.NewFileProber(audio.NewFFmpeg("", "")), nil, nil)
}

func recordedAsset(t *testing.T) model.AudioAsset {
	t.Helper()
	path := testutil.WriteToneWav(t, t.TempDir(), "recorded_audio.wav", 1, 16000)
	return model.AudioAsset{Path: path, Origin: model.OriginRecorded}
}

func TestTranscribeSuccess(t *testing.T) {
	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(nil).Once()
	p.On("TranscriptWithOptions", mock.Anything, mock.MatchedBy(func(r *provider.TranscriptionRequest) bool {
		return r.Language == "auto" && r.Is16kHzMonoWav
	})).Return(&provider.TranscriptionResponse{Language: "en", Text: "  hello world \n", ModelUsed: "base"}, nil)

	e := newTestEngine(t, p, 0)
	asset := recordedAsset(t)

	result, err := e.Transcribe(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, "base", result.Model)

	_, err = e.Transcribe(context.Background(), asset)
	require.NoError(t, err)

	p.AssertNumberOfCalls(t, "LoadModel", 1)
	stats := e.Metrics().GetProviderMetrics("mock")
	assert.Equal(t, int64(2), stats.SuccessfulRequests)
	assert.InDelta(t, 2.0, stats.TotalAudioProcessed, 0.01)
	p.AssertExpectations(t)
}

func TestLoadRetriesAfterFailure(t *testing.T) {
	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(errors.New("model file corrupt")).Once()
	p.On("LoadModel", mock.Anything).Return(nil).Once()

	e := newTestEngine(t, p, 0)

	err := e.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInference, apperrors.KindOf(err))
	assert.False(t, e.Loaded())

	require.NoError(t, e.Load(context.Background()))
	assert.True(t, e.Loaded())
	require.NoError(t, e.Load(context.Background()))
	p.AssertNumberOfCalls(t, "LoadModel", 2)
}

func TestUnknownProviderIsInferenceFailure(t *testing.T) {
	e := New(Config{Provider: "no-such-provider"}, audio.NewFileProber(audio.NewFFmpeg("", "")), nil, nil)

	err := e.Load(context.Background())
	assert.Equal(t, apperrors.KindConfig, apperrors.KindOf(err))

	_, err = e.Transcribe(context.Background(), recordedAsset(t))
	assert.ErrorIs(t, err, apperrors.ErrInference)
}

func TestTranscribeErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind apperrors.Kind
		wantCode string
	}{
		{
			name:     "undecodable audio",
			err:      provider.NewTranscriptionError("mock", provider.CodeDecodeError, false, nil, "bad header"),
			wantKind: apperrors.KindDecode,
			wantCode: provider.CodeDecodeError,
		},
		{
			name:     "rejected file",
			err:      provider.NewTranscriptionError("mock", provider.CodeInvalidFile, false, nil, "rejected"),
			wantKind: apperrors.KindDecode,
			wantCode: provider.CodeInvalidFile,
		},
		{
			name:     "execution failure",
			err:      provider.NewTranscriptionError("mock", provider.CodeExecutionError, false, nil, "exit status 1"),
			wantKind: apperrors.KindInference,
			wantCode: provider.CodeExecutionError,
		},
		{
			name:     "foreign error",
			err:      errors.New("connection reset"),
			wantKind: apperrors.KindInference,
			wantCode: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewMockProvider(t, "mock")
			p.On("LoadModel", mock.Anything).Return(nil)
			p.On("TranscriptWithOptions", mock.Anything, mock.Anything).Return(nil, tt.err)

			e := newTestEngine(t, p, 0)
			_, err := e.Transcribe(context.Background(), recordedAsset(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))

			stats := e.Metrics().GetProviderMetrics("mock")
			assert.Equal(t, int64(1), stats.FailedRequests)
			assert.Equal(t, int64(1), stats.ErrorBreakdown[tt.wantCode])
		})
	}
}

func TestMissingLanguageIsInferenceFailure(t *testing.T) {
	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(nil)
	p.On("TranscriptWithOptions", mock.Anything, mock.Anything).
		Return(&provider.TranscriptionResponse{Text: "hello"}, nil)

	e := newTestEngine(t, p, 0)
	_, err := e.Transcribe(context.Background(), recordedAsset(t))
	assert.ErrorIs(t, err, apperrors.ErrInference)
}

func TestTranscribeTimeout(t *testing.T) {
	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(nil)
	p.On("TranscriptWithOptions", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	e := newTestEngine(t, p, 50*time.Millisecond)
	_, err := e.Transcribe(context.Background(), recordedAsset(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInference, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "timeout")
}

func TestUndecodableInputNeverReachesProvider(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"plain text", []byte("this is not audio at all, just some words\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewMockProvider(t, "mock")
			p.On("LoadModel", mock.Anything).Return(nil)

			e := newTestEngine(t, p, 0)
			path := testutil.WriteFile(t, t.TempDir(), "uploaded_audio.wav", tt.data)

			_, err := e.Transcribe(context.Background(), model.AudioAsset{Path: path, Origin: model.OriginUploaded})
			assert.ErrorIs(t, err, apperrors.ErrDecode)
			p.AssertNotCalled(t, "TranscriptWithOptions", mock.Anything, mock.Anything)
		})
	}
}

func TestNonStandardWavIsFlaggedForConversion(t *testing.T) {
	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(nil)
	p.On("TranscriptWithOptions", mock.Anything, mock.MatchedBy(func(r *provider.TranscriptionRequest) bool {
		return !r.Is16kHzMonoWav
	})).Return(&provider.TranscriptionResponse{Language: "fr", Text: "bonjour"}, nil)

	e := newTestEngine(t, p, 0)
	path := testutil.WriteToneWav(t, t.TempDir(), "recorded_audio.wav", 0.5, 44100)

	result, err := e.Transcribe(context.Background(), model.AudioAsset{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "fr", result.Language)
	p.AssertExpectations(t)
}

func TestCancelledProbeIsNotDecodeError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	ffprobe := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffprobe, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755))

	p := testutil.NewMockProvider(t, "mock")
	p.On("LoadModel", mock.Anything).Return(nil)
	e := NewWithProvider(p, Config{Language: "auto"}, audio.NewFileProber(audio.NewFFmpeg("", ffprobe)), nil, nil)

	id3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 512)...)
	path := testutil.WriteFile(t, dir, "uploaded_audio.mp3", id3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := e.Transcribe(ctx, model.AudioAsset{Path: path, Origin: model.OriginUploaded})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInference, apperrors.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, apperrors.ErrDecode)
	p.AssertNotCalled(t, "TranscriptWithOptions", mock.Anything, mock.Anything)
}
