package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestBuildAssessmentPrompt(t *testing.T) {
	items := []WorkItem{
		{ID: 42, Title: "App crash on login", Type: "Bug", State: "New", Severity: "1 - Critical", Description: "stack trace attached"},
		{ID: 7, Title: "Update docs", Type: "Task", State: "To Do"},
	}
	prompt := buildAssessmentPrompt(items, 3)

	for _, want := range []string{
		"last 3 days",
		"HIGH, MEDIUM, or LOW",
		"ID: 42",
		"ID: 7",
		"Severity: 1 - Critical",
		"Description: stack trace attached",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Severity: \n") {
		t.Error("empty severity must be omitted")
	}
}

func TestBuildAssessmentPromptTruncatesLongDescriptions(t *testing.T) {
	items := []WorkItem{{ID: 1, Title: "x", Description: strings.Repeat("y", 600)}}
	prompt := buildAssessmentPrompt(items, 1)
	if strings.Contains(prompt, strings.Repeat("y", 501)) {
		t.Error("description not truncated")
	}
	if !strings.Contains(prompt, "...") {
		t.Error("truncation marker missing")
	}
}

// fakeCLI writes an executable stand-in for the claude binary.
func fakeCLI(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI scripts are unix-only")
	}
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("writing fake CLI: %v", err)
	}
	return path
}

func TestClaudeCLINotFound(t *testing.T) {
	client := &claudeCLIClient{cfg: Config{ClaudeCLIPath: filepath.Join(t.TempDir(), "no-such-binary")}}
	_, err := client.Assess(context.Background(), nil, 1)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("want tool-not-found error, got %v", err)
	}
}

func TestClaudeCLISuccess(t *testing.T) {
	cli := fakeCLI(t, `echo "ID: 42 looks HIGH"`)
	client := &claudeCLIClient{cfg: Config{ClaudeCLIPath: cli}}
	text, err := client.Assess(context.Background(), []WorkItem{{ID: 42, Title: "x"}}, 1)
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if !strings.Contains(text, "ID: 42 looks HIGH") {
		t.Errorf("unexpected assessment text %q", text)
	}
}

func TestClaudeCLIEmptyResponse(t *testing.T) {
	cli := fakeCLI(t, `exit 0`)
	client := &claudeCLIClient{cfg: Config{ClaudeCLIPath: cli}}
	_, err := client.Assess(context.Background(), nil, 1)
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("want empty-response error, got %v", err)
	}
}

func TestClaudeCLITimeout(t *testing.T) {
	cli := fakeCLI(t, `sleep 5`)
	client := &claudeCLIClient{cfg: Config{ClaudeCLIPath: cli, AITimeoutSeconds: 1}}
	_, err := client.Assess(context.Background(), nil, 1)
	if err == nil || !strings.Contains(err.Error(), "timed out after 1 seconds") {
		t.Fatalf("want timeout error, got %v", err)
	}
}

func TestClaudeCLIAuthFailure(t *testing.T) {
	cli := fakeCLI(t, `echo "please run claude login first" >&2; exit 1`)
	client := &claudeCLIClient{cfg: Config{ClaudeCLIPath: cli}}
	_, err := client.Assess(context.Background(), nil, 1)
	if err == nil || !strings.Contains(err.Error(), "authentication unavailable") {
		t.Fatalf("want auth error, got %v", err)
	}
}

func TestAnthropicClientWithoutKey(t *testing.T) {
	client := &anthropicAssessmentClient{cfg: Config{}}
	_, err := client.Assess(context.Background(), nil, 1)
	if err == nil || !strings.Contains(err.Error(), "API key not configured") {
		t.Fatalf("want missing-key error, got %v", err)
	}
}

func TestNewAIAssessmentClientProviderSelection(t *testing.T) {
	if _, ok := NewAIAssessmentClient(Config{AIProvider: "anthropic"}).(*anthropicAssessmentClient); !ok {
		t.Error("anthropic provider not selected")
	}
	if _, ok := NewAIAssessmentClient(Config{AIProvider: "claude-cli"}).(*claudeCLIClient); !ok {
		t.Error("claude-cli provider not selected")
	}
}

func TestAITimeoutDefault(t *testing.T) {
	if got := (Config{}).AITimeout().Seconds(); got != 120 {
		t.Errorf("default AI timeout = %vs, want 120s", got)
	}
	if got := (Config{AITimeoutSeconds: 30}).AITimeout().Seconds(); got != 30 {
		t.Errorf("AI timeout = %vs, want 30s", got)
	}
}
