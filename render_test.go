package main

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func reportFixture() ([]AnalyzedItem, ReportContext) {
	items := []WorkItem{
		{ID: 42, Title: "App crash on login", Type: "Bug", State: "New", Description: "stack trace attached"},
		{ID: 7, Title: "Update onboarding docs", Type: "Task", State: "To Do"},
		{ID: 1001, Title: "Sync fails with <timeout> & retries", Type: "Bug", State: "Active"},
	}
	ctx := ReportContext{Days: 3, GeneratedAt: time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)}
	return scoreAndAnalyze(items), ctx
}

func TestRenderAllChannelsCarryEveryID(t *testing.T) {
	items, ctx := reportFixture()
	channels := []OutputChannel{OutputConsole, OutputHTML, OutputBrowser, OutputText, OutputEmail, OutputSlack}

	for _, channel := range channels {
		t.Run(string(channel), func(t *testing.T) {
			out, err := Render(items, channel, ctx)
			if err != nil {
				t.Fatalf("Render(%s) failed: %v", channel, err)
			}
			for _, it := range items {
				idStr := fmt.Sprintf("%d", it.Item.ID)
				if !strings.Contains(out.Content, idStr) {
					t.Errorf("%s output missing id %s", channel, idStr)
				}
			}
		})
	}
}

func TestRenderUnknownChannel(t *testing.T) {
	items, ctx := reportFixture()
	if _, err := Render(items, OutputChannel("pdf"), ctx); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestRenderFilenames(t *testing.T) {
	items, ctx := reportFixture()
	tests := []struct {
		channel OutputChannel
		want    string
	}{
		{OutputConsole, ""},
		{OutputHTML, "TFS-Daily-Summary.html"},
		{OutputBrowser, "TFS-Daily-Summary.html"},
		{OutputText, "TFS-Daily-Summary.txt"},
		{OutputEmail, "TFS-Daily-Summary.eml"},
		{OutputSlack, ""},
	}
	for _, tt := range tests {
		out, err := Render(items, tt.channel, ctx)
		if err != nil {
			t.Fatalf("Render(%s) failed: %v", tt.channel, err)
		}
		if out.Filename != tt.want {
			t.Errorf("Render(%s) filename = %q, want %q", tt.channel, out.Filename, tt.want)
		}
	}
}

func TestRenderAIFailureAnnotation(t *testing.T) {
	items, ctx := reportFixture()
	ctx.AIFailure = "Command timed out after 120 seconds"

	for _, channel := range []OutputChannel{OutputConsole, OutputHTML, OutputText, OutputEmail, OutputSlack} {
		out, err := Render(items, channel, ctx)
		if err != nil {
			t.Fatalf("Render(%s) failed: %v", channel, err)
		}
		if !strings.Contains(out.Content, "Claude Analysis Failure Reason: Command timed out after 120 seconds") {
			t.Errorf("%s output does not surface the AI failure reason", channel)
		}
	}
}

func TestRenderReconciledProvenance(t *testing.T) {
	items, ctx := reportFixture()
	recs := ReconcileWithAssessment(items, "ID: 7 looks HIGH priority to me")
	ctx.Reconciled = reconciledByID(recs)

	out, err := Render(items, OutputText, ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out.Content, "[HIGH] Update onboarding docs") {
		t.Errorf("reconciled level not displayed:\n%s", out.Content)
	}
	if !strings.Contains(out.Content, "AI assessed (traditional: LOW, score 4)") {
		t.Errorf("missing AI provenance annotation:\n%s", out.Content)
	}
	if !strings.Contains(out.Content, "traditional scoring (score") {
		t.Errorf("missing traditional provenance annotation for unmatched items:\n%s", out.Content)
	}
	// The traditional score remains the displayed score even for AI levels.
	if !strings.Contains(out.Content, "Score: 4") {
		t.Errorf("traditional score not displayed:\n%s", out.Content)
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	items, ctx := reportFixture()
	out, err := Render(items, OutputHTML, ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(out.Content, "<timeout>") {
		t.Error("HTML output contains unescaped title markup")
	}
	if !strings.Contains(out.Content, "&lt;timeout&gt;") {
		t.Error("HTML output missing escaped title")
	}
	for _, want := range []string{"High Priority:", "Medium Priority:", "Low Priority:"} {
		if !strings.Contains(out.Content, want) {
			t.Errorf("HTML summary missing %q", want)
		}
	}
}

func TestRenderTextOrdering(t *testing.T) {
	items, ctx := reportFixture()
	out, err := Render(items, OutputText, ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// Descending traditional score: crash bug (9) before failing sync bug,
	// docs task last.
	first := strings.Index(out.Content, "App crash on login")
	second := strings.Index(out.Content, "Sync fails")
	third := strings.Index(out.Content, "Update onboarding docs")
	if !(first < second && second < third) {
		t.Errorf("items out of order: %d, %d, %d\n%s", first, second, third, out.Content)
	}
}

func TestRenderEmailIsMultipartAlternative(t *testing.T) {
	items, ctx := reportFixture()
	out, err := Render(items, OutputEmail, ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative",
		"Subject: TFS Ticket Analysis - Last 3 days",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
	} {
		if !strings.Contains(out.Content, want) {
			t.Errorf("email output missing %q", want)
		}
	}
}
