package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speech-whisper/internal/app/errors"
)

func TestFileProber(t *testing.T) {
	dir := t.TempDir()
	prober := NewFileProber(NewFFmpeg("s2t-missing-ffmpeg-binary", "s2t-missing-ffprobe-binary"))

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.wav")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := prober.Probe(context.Background(), path)
		assert.ErrorIs(t, err, apperrors.ErrEmptyAudio)
		assert.ErrorIs(t, err, apperrors.ErrDecode)
	})

	t.Run("text renamed to mp3", func(t *testing.T) {
		path := filepath.Join(dir, "notes.mp3")
		require.NoError(t, os.WriteFile(path, []byte("shopping list: eggs, milk\n"), 0o644))

		_, err := prober.Probe(context.Background(), path)
		assert.ErrorIs(t, err, apperrors.ErrDecode)
	})

	t.Run("wav inspected without ffprobe", func(t *testing.T) {
		path := filepath.Join(dir, "ok.wav")
		require.NoError(t, WriteMonoWav(path, sineLikeSamples(4410), 44100))

		info, err := prober.Probe(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 44100, info.SampleRate)
		assert.Equal(t, 1, info.Channels)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := prober.Probe(context.Background(), filepath.Join(dir, "nope.wav"))
		assert.ErrorIs(t, err, apperrors.ErrIO)
	})
}

func TestIsAudioContainer(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"mp3 with id3", append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...), true},
		{"ogg", append([]byte("OggS\x00\x02"), make([]byte, 64)...), true},
		{"plain text", []byte("hello world"), false},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAudioContainer(mimetype.Detect(tt.data)))
		})
	}
}
