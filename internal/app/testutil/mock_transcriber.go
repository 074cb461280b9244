package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"speech-whisper/internal/app/api"
	"speech-whisper/internal/app/model"
)

// MockTranscriber is a testify mock of api.Transcriber that also records the
// assets it was given and whether each file existed at call time.
type MockTranscriber struct {
	mock.Mock
	mu sync.Mutex

	Calls []TranscriptionCall

	// OnCall runs inside Transcribe before the mocked result is returned.
	OnCall func(asset model.AudioAsset)
}

// TranscriptionCall represents a single transcription call for tracking
type TranscriptionCall struct {
	Asset      model.AudioAsset
	FileExists bool
}

// NewMockTranscriber creates a MockTranscriber bound to t.
func NewMockTranscriber(t *testing.T) *MockTranscriber {
	m := &MockTranscriber{}
	m.Test(t)
	return m
}

// Transcribe implements api.Transcriber
func (m *MockTranscriber) Transcribe(ctx context.Context, asset model.AudioAsset) (model.TranscriptionResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, TranscriptionCall{Asset: asset, FileExists: fileExists(asset.Path)})
	onCall := m.OnCall
	m.mu.Unlock()

	if onCall != nil {
		onCall(asset)
	}

	args := m.Called(ctx, asset)
	return args.Get(0).(model.TranscriptionResult), args.Error(1)
}

// ExpectTranscribe sets up an expectation for any asset.
func (m *MockTranscriber) ExpectTranscribe(result model.TranscriptionResult, err error) *mock.Call {
	return m.On("Transcribe", mock.Anything, mock.AnythingOfType("model.AudioAsset")).Return(result, err)
}

// CallCount returns the number of Transcribe calls.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the last call, or nil.
func (m *MockTranscriber) LastCall() *TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	call := m.Calls[len(m.Calls)-1]
	return &call
}

// Interface compliance check
var _ api.Transcriber = (*MockTranscriber)(nil)
