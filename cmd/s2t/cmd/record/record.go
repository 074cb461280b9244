package record

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-whisper/cmd/s2t/cmd/shared"
	"speech-whisper/internal/app/pipeline"
)

var durationSec int
var output string

func init() {
	Cmd.Flags().IntVarP(&durationSec, "duration", "d", 0,
		"Recording length in seconds (default from capture.default_duration_sec)")
	Cmd.Flags().StringVarP(&output, "output", "o", "",
		"Transcript file or directory (default from transcript.dir and transcript.file_name)")
}

// Cmd represents the record command
var Cmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone and transcribe it",
	Long: `Record from the microphone and transcribe it

- Records a fixed number of seconds of mono audio
- Transcribes the recording with the configured provider
- Saves the transcript and removes the recording`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := shared.Setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		shared.ApplyOutput(cfg, output)
		if durationSec == 0 {
			durationSec = cfg.Capture.DefaultDurationSec
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		outcome, err := shared.Run(ctx, cfg, logger, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Outcome, error) {
			return p.RecordAndTranscribe(ctx, durationSec)
		})
		if err != nil {
			logger.Error("recording failed", zap.Error(err))
			return err
		}

		shared.PrintOutcome(cmd.OutOrStdout(), outcome)
		return nil
	},
}
