package store

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speech-whisper/internal/app/errors"
)

func TestSaveAndReadBack(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"ascii", "hello world"},
		{"empty", ""},
		{"multibyte", "你好，世界 ça va? 🎤"},
		{"multiline", "line one\nline two\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(t.TempDir(), "", nil)

			file, err := s.Save(tt.text, "")
			require.NoError(t, err)
			assert.Equal(t, DefaultFileName, file.Name)
			assert.Equal(t, int64(len(tt.text)), file.Size)

			raw, err := os.ReadFile(file.Path)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.text), raw)

			got, err := s.Read("")
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", nil)

	_, err := s.Save("a much longer first transcript", "")
	require.NoError(t, err)
	_, err = s.Save("short", "")
	require.NoError(t, err)
	_, err = s.Save("short", "")
	require.NoError(t, err)

	got, err := s.Read("")
	require.NoError(t, err)
	assert.Equal(t, "short", got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveReplacesInvalidUTF8(t *testing.T) {
	s := New(t.TempDir(), "", nil)

	_, err := s.Save("ok \xff\xfe done", "")
	require.NoError(t, err)

	got, err := s.Read("")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ok � done", got)
}

func TestCustomFileNames(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "out.txt", nil)

	file, err := s.Save("default override", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.txt"), file.Path)

	_, err = s.Save("named", "meeting.txt")
	require.NoError(t, err)
	got, err := s.Read("meeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "named", got)
}

func TestRejectsPathNames(t *testing.T) {
	s := New(t.TempDir(), "", nil)
	for _, name := range []string{"../escape.txt", "sub/dir.txt", ".", ".."} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save("x", name)
			assert.ErrorIs(t, err, apperrors.ErrIO)

			_, _, err = s.Open(name)
			assert.ErrorIs(t, err, apperrors.ErrIO)
		})
	}
}

func TestOpenMissingTranscript(t *testing.T) {
	s := New(t.TempDir(), "", nil)

	_, _, err := s.Open("")
	assert.ErrorIs(t, err, apperrors.ErrNoTranscript)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.Read("")
	assert.ErrorIs(t, err, apperrors.ErrNoTranscript)
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := New(dir, "", nil)

	_, err := s.Save("hi", "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, DefaultFileName))
}
