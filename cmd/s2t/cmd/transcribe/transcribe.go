package transcribe

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-whisper/cmd/s2t/cmd/shared"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/pipeline"
)

var output string

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "",
		"Transcript file or directory (default from transcript.dir and transcript.file_name)")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio file>",
	Short: "Transcribe an existing audio file",
	Long: `Transcribe an existing audio file

- Accepts mp3, wav or m4a (anything ffmpeg can decode)
- Converts to 16 kHz mono WAV when needed
- Saves the transcript next to the other transcripts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := shared.Setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		shared.ApplyOutput(cfg, output)

		file, err := os.Open(args[0])
		if err != nil {
			return apperrors.Wrapf(err, apperrors.KindIO, "failed to open %s", args[0])
		}
		defer file.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		outcome, err := shared.Run(ctx, cfg, logger, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Outcome, error) {
			return p.TranscribeUpload(ctx, file, filepath.Base(args[0]))
		})
		if err != nil {
			logger.Error("transcription failed", zap.String("file", args[0]), zap.Error(err))
			return err
		}

		shared.PrintOutcome(cmd.OutOrStdout(), outcome)
		return nil
	},
}
