package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speech-whisper/internal/app/config"
)

func TestApplyOutput(t *testing.T) {
	existing := t.TempDir()

	tests := []struct {
		name     string
		output   string
		wantDir  string
		wantFile string
	}{
		{"empty keeps defaults", "", "transcripts", "transcription.txt"},
		{"file path", filepath.Join("out", "notes.txt"), "out", "notes.txt"},
		{"trailing separator", "out" + string(os.PathSeparator), "out" + string(os.PathSeparator), "transcription.txt"},
		{"existing directory", existing, existing, "transcription.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.AppConfig{Transcript: config.TranscriptConfig{Dir: "transcripts", FileName: "transcription.txt"}}
			ApplyOutput(cfg, tt.output)
			assert.Equal(t, tt.wantDir, cfg.Transcript.Dir)
			assert.Equal(t, tt.wantFile, cfg.Transcript.FileName)
		})
	}
}

func TestSetupUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_dir: "+dir+"\nengine:\n  provider: whisper_server\n"), 0o644))
	t.Setenv("S2T_PROVIDER", "")
	t.Setenv("S2T_WORK_DIR", "")

	ConfigPath = path
	t.Cleanup(func() { ConfigPath = "" })

	cfg, logger, err := Setup()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, dir, cfg.WorkDir)
	assert.Equal(t, "whisper_server", cfg.Engine.Provider)
}
