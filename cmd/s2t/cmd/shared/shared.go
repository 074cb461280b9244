// Package shared holds the setup every s2t subcommand repeats.
package shared

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"speech-whisper/internal/app"
	"speech-whisper/internal/app/config"
	"speech-whisper/internal/app/logging"
	"speech-whisper/internal/app/pipeline"
	"speech-whisper/internal/app/progress"
	envconfig "speech-whisper/internal/config"
)

var (
	// Verbose is bound to the root --verbose flag.
	Verbose bool
	// ConfigPath is bound to the root --config flag.
	ConfigPath string
)

// Setup loads .env and the config file, then builds the logger and makes it global.
func Setup() (*config.AppConfig, *zap.Logger, error) {
	_, envFile, envErr := envconfig.InitializeConfig()

	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(cfg.Log.Development, Verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Warn("configuration warning", zap.Error(envErr))
	} else if envFile != "" {
		logger.Debug("loaded environment file", zap.String("path", envFile))
	}
	logger.Debug("configuration loaded",
		zap.String("config", ConfigPath),
		zap.String("provider", cfg.Engine.Provider),
		zap.String("work_dir", cfg.WorkDir))

	return cfg, logger, nil
}

// ApplyOutput points the transcript at output, a file path or a directory
// (trailing separator or existing directory).
func ApplyOutput(cfg *config.AppConfig, output string) {
	if output == "" {
		return
	}
	if info, err := os.Stat(output); (err == nil && info.IsDir()) || os.IsPathSeparator(output[len(output)-1]) {
		cfg.Transcript.Dir = output
		return
	}
	cfg.Transcript.Dir = filepath.Dir(output)
	cfg.Transcript.FileName = filepath.Base(output)
}

// Run builds the app, loads the model and hands the pipeline to action with
// progress bars attached when stderr is a terminal.
func Run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, action func(context.Context, *pipeline.Pipeline) (*pipeline.Outcome, error)) (*pipeline.Outcome, error) {
	application, err := app.InitializeApp(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := application.Engine.Load(ctx); err != nil {
		return nil, err
	}

	manager := progress.NewManager(progress.Config{
		Enabled: progress.ShouldShowProgress(false),
		Writer:  os.Stderr,
	})
	renderer := progress.NewRenderer(manager)
	application.Pipeline.OnStatus(renderer.Observe)
	defer renderer.Close()

	return action(ctx, application.Pipeline)
}

// PrintOutcome writes the language, text and transcript path to w.
func PrintOutcome(w io.Writer, outcome *pipeline.Outcome) {
	fmt.Fprintf(w, "Language: %s\n", outcome.Result.Language)
	fmt.Fprintf(w, "Text: %s\n", outcome.Result.Text)
	if outcome.Transcript != nil {
		fmt.Fprintf(w, "Saved to: %s\n", outcome.Transcript.Path)
	}
}
