package serve

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-whisper/cmd/s2t/cmd/shared"
	"speech-whisper/internal/app"
)

var host string
var port string

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "Listen host (default from server.host)")
	Cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default from server.port)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record and upload actions over HTTP",
	Long: `Serve the record and upload actions over HTTP

- POST /api/v1/recordings records from the server's microphone
- POST /api/v1/transcriptions/upload transcribes an uploaded file
- GET /api/v1/transcript downloads the latest transcript`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := shared.Setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if host != "" {
			cfg.Server.Host = host
		}
		if port != "" {
			cfg.Server.Port = port
		}

		application, err := app.InitializeApp(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The server still starts without a model; /health reports it.
		if err := application.Engine.Load(ctx); err != nil {
			logger.Warn("model not loaded", zap.String("provider", application.Engine.ProviderName()), zap.Error(err))
		}

		srv := app.NewServer(application)
		errs := srv.Start()

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
