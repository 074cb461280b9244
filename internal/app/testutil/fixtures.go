package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"speech-whisper/internal/app/audio"
)

// WriteSilentWav writes seconds of 16-bit mono silence and returns the path.
func WriteSilentWav(t *testing.T, dir, name string, seconds float64, sampleRate int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	samples := make([]int, int(seconds*float64(sampleRate)))
	require.NoError(t, audio.WriteMonoWav(path, samples, sampleRate))
	return path
}

// WriteToneWav writes a 440 Hz tone.
func WriteToneWav(t *testing.T, dir, name string, seconds float64, sampleRate int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	samples := make([]int, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	require.NoError(t, audio.WriteMonoWav(path, samples, sampleRate))
	return path
}

// WriteFile writes raw bytes and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ListDir returns the names in dir, excluding nothing.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// NewObservedLogger returns a logger whose entries at or above level are
// captured for assertions.
func NewObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
