package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lexiqai/question-stream/internal/question"
)

func runCLI(t *testing.T, stdin string, args ...string) []question.DetectedQuestion {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	var questions []question.DetectedQuestion
	if err := json.Unmarshal(out.Bytes(), &questions); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out.String(), err)
	}
	return questions
}

func TestExtractCommand_Args(t *testing.T) {
	questions := runCLI(t, "", "extract", "えーと、今日の予定はどうなっていますか？")

	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if questions[0].RefinedText != "今日の予定はどうなっていますか？" {
		t.Errorf("Unexpected refined text %q", questions[0].RefinedText)
	}
}

func TestExtractCommand_Stdin(t *testing.T) {
	questions := runCLI(t, "何時に始まりますか？誰が参加しますか？\n", "extract")

	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
}

func TestExtractCommand_NoQuestions(t *testing.T) {
	questions := runCLI(t, "", "extract", "今日は天気がいいですね")

	if questions == nil || len(questions) != 0 {
		t.Errorf("Expected an empty list, got %v", questions)
	}
}
