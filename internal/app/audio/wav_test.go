package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speech-whisper/internal/app/errors"
)

func sineLikeSamples(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i%200 - 100) * 100
	}
	return samples
}

func TestWriteMonoWavRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorded_audio.wav")
	samples := sineLikeSamples(16000)

	require.NoError(t, WriteMonoWav(path, samples, 16000))

	info, err := InspectWav(path)
	require.NoError(t, err)
	assert.Equal(t, "wav", info.Container)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.Equal(t, time.Second, info.Duration)
	assert.True(t, info.Is16kHzMonoPCM())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, samples, buf.Data)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44+2*len(samples)), stat.Size())
}

func TestWriteMonoWavOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	require.NoError(t, WriteMonoWav(path, sineLikeSamples(44100*2), 44100))
	require.NoError(t, WriteMonoWav(path, sineLikeSamples(8000), 8000))

	info, err := InspectWav(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, info.SampleRate)
	assert.Equal(t, time.Second, info.Duration)
}

func TestInspectWavRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff header"), 0o644))

	_, err := InspectWav(path)
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}

func TestInspectWavMissingFile(t *testing.T) {
	_, err := InspectWav(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, apperrors.ErrIO)
}

func TestInspectWavDurationFromDataChunk(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		seconds  int
		dataSize int64
	}{
		{"8 kHz three seconds", 8000, 3, 48000},
		{"16 kHz one second", 16000, 1, 32000},
		{"44.1 kHz thirty seconds", 44100, 30, 2646000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clip.wav")
			require.NoError(t, WriteMonoWav(path, make([]int, tt.rate*tt.seconds), tt.rate))

			stat, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, 44+tt.dataSize, stat.Size())

			info, err := InspectWav(path)
			require.NoError(t, err)
			assert.Equal(t, time.Duration(tt.seconds)*time.Second, info.Duration)
		})
	}
}

func TestInspectWavHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, WriteMonoWav(path, sineLikeSamples(16000), 16000))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:36], 0o644))

	_, err = InspectWav(path)
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}
