package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexiqai/question-stream/internal/question"
)

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Extract refined questions from a transcript given as arguments or on stdin",
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	lex, err := lexiconFlag(cmd)
	if err != nil {
		return err
	}
	minChars, _ := cmd.Flags().GetInt("min-chars")

	pipeline, err := question.NewPipeline(lex, question.WithMinChars(minChars))
	if err != nil {
		return err
	}

	questions, err := pipeline.Extract(cmd.Context(), text, time.Now(), 1)
	if err != nil {
		return err
	}
	if questions == nil {
		questions = []question.DetectedQuestion{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(questions)
}

func lexiconFlag(cmd *cobra.Command) (*question.Lexicon, error) {
	path, _ := cmd.Flags().GetString("lexicon")
	if path == "" {
		return question.DefaultLexicon(), nil
	}
	return question.LoadLexicon(path)
}
