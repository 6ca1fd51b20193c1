package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexiqai/question-stream/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "questionctl",
	Short: "Extract questions from transcripts and recorded audio",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		pretty, _ := cmd.Flags().GetBool("log-pretty")
		observability.InitLogger(level, pretty)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Pretty print logs")
	rootCmd.PersistentFlags().String("lexicon", "", "YAML lexicon overriding the built-in word lists")

	extractCmd.Flags().Int("min-chars", 3, "Ignore transcripts shorter than this many characters")
	transcribeCmd.Flags().Int("batch-ms", 20, "Audio fed to the session per batch")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(transcribeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
