package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"speech-whisper/cmd/s2t/cmd/record"
	"speech-whisper/cmd/s2t/cmd/serve"
	"speech-whisper/cmd/s2t/cmd/shared"
	"speech-whisper/cmd/s2t/cmd/transcribe"
	"speech-whisper/cmd/s2t/cmd/version"
	"speech-whisper/internal/app/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "s2t",
	Short: "Record or upload speech and turn it into text",
	Long: `Record or upload speech and turn it into text.
- Record a fixed number of seconds from the microphone, or pick an audio file
- The audio is transcribed with whisper.cpp, a whisper server or OpenAI
- The transcript is saved as a UTF-8 text file`,
	TraverseChildren: true,
	SilenceUsage:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(record.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&shared.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&shared.ConfigPath, "config", config.DefaultConfigPath(),
		"config file (default is $S2T_CONFIG or ./config.yaml)")
}
