package audio

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speech-whisper/internal/app/errors"
)

const sampleProbeJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264"},
    {"codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2, "bits_per_sample": 0}
  ],
  "format": {"format_name": "mp3", "duration": "2.500000"}
}`

func TestParseProbeOutput(t *testing.T) {
	info, err := ParseProbeOutput([]byte(sampleProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, "mp3", info.Container)
	assert.Equal(t, 44100, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.Equal(t, 2500*time.Millisecond, info.Duration)
	assert.False(t, info.Is16kHzMonoPCM())
}

func TestParseProbeOutputErrors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"not json", "Invalid data found when processing input"},
		{"no audio stream", `{"streams":[{"codec_type":"video"}],"format":{"format_name":"mov","duration":"1.0"}}`},
		{"no streams", `{"streams":[],"format":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProbeOutput([]byte(tt.output))
			assert.ErrorIs(t, err, apperrors.ErrDecode)
		})
	}
}

func TestMissingBinaryIsConfigError(t *testing.T) {
	ff := NewFFmpeg("s2t-missing-ffmpeg-binary", "s2t-missing-ffprobe-binary")

	_, err := ff.Probe(context.Background(), "whatever.mp3")
	assert.Equal(t, apperrors.KindConfig, apperrors.KindOf(err))

	err = ff.ConvertTo16kHzMonoWav(context.Background(), "in.mp3", "out.wav")
	assert.Equal(t, apperrors.KindConfig, apperrors.KindOf(err))
}

func TestNewFFmpegDefaults(t *testing.T) {
	ff := NewFFmpeg("", "")
	assert.Equal(t, "ffmpeg", ff.FFmpegPath)
	assert.Equal(t, "ffprobe", ff.FFprobePath)
}

func TestProbeWithScriptedFFprobe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat <<'JSON'\n"+sampleProbeJSON+"\nJSON\n"), 0o755))

	failing := filepath.Join(dir, "ffprobe-fail")
	require.NoError(t, os.WriteFile(failing, []byte("#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n"), 0o755))

	info, err := NewFFmpeg("", script).Probe(context.Background(), "clip.mp3")
	require.NoError(t, err)
	assert.Equal(t, 44100, info.SampleRate)

	_, err = NewFFmpeg("", failing).Probe(context.Background(), "clip.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDecode)
	assert.Contains(t, err.Error(), "moov atom not found")
}

func TestCancelledToolRunIsNotDecodeError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	slow := filepath.Join(dir, "slow-tool")
	require.NoError(t, os.WriteFile(slow, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755))
	ff := NewFFmpeg(slow, slow)

	tests := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"ffprobe", func(ctx context.Context) error {
			_, err := ff.Probe(ctx, "clip.mp3")
			return err
		}},
		{"ffmpeg", func(ctx context.Context) error {
			return ff.ConvertTo16kHzMonoWav(ctx, "clip.mp3", filepath.Join(dir, "out.wav"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			start := time.Now()
			err := tt.run(ctx)
			assert.Less(t, time.Since(start), 4*time.Second)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.NotErrorIs(t, err, apperrors.ErrDecode)
		})
	}
}
