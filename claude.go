package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AIAssessmentClient produces a free-text priority assessment for a set of
// work items. No structured response is guaranteed; the reconciler deals
// with whatever text comes back. All failures are non-fatal to the run and
// carry a single human-readable reason.
type AIAssessmentClient interface {
	Assess(ctx context.Context, items []WorkItem, days int) (string, error)
}

// NewAIAssessmentClient selects the provider: "anthropic" calls the API
// directly, anything else shells out to the claude CLI.
func NewAIAssessmentClient(cfg Config) AIAssessmentClient {
	if cfg.AIProvider == "anthropic" {
		return &anthropicAssessmentClient{cfg: cfg}
	}
	return &claudeCLIClient{cfg: cfg}
}

func buildAssessmentPrompt(items []WorkItem, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are reviewing TFS work items from the last %d days.\n", days)
	b.WriteString("For each item, assess its real urgency and assign a priority level: HIGH, MEDIUM, or LOW.\n")
	b.WriteString("Reference each item by its id (\"ID: <id>\") and state the level near the id.\n")
	b.WriteString("Briefly justify each level.\n\nWork items:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "ID: %d\nTitle: %s\nType: %s\nState: %s\n", item.ID, item.Title, item.Type, item.State)
		if item.Severity != "" {
			fmt.Fprintf(&b, "Severity: %s\n", item.Severity)
		}
		if desc := strings.TrimSpace(item.Description); desc != "" {
			if len(desc) > 500 {
				desc = desc[:500] + "..."
			}
			fmt.Fprintf(&b, "Description: %s\n", desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// --- claude CLI ---

type claudeCLIClient struct {
	cfg Config
}

func (c *claudeCLIClient) Assess(ctx context.Context, items []WorkItem, days int) (string, error) {
	cliPath := c.cfg.ClaudeCLIPath
	if cliPath == "" {
		cliPath = "claude"
	}
	resolved, err := exec.LookPath(cliPath)
	if err != nil {
		return "", fmt.Errorf("claude CLI not found in PATH (%s)", cliPath)
	}

	timeout := c.cfg.AITimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildAssessmentPrompt(items, days)
	log.Printf("ai assess provider=claude-cli items=%d timeout=%s", len(items), timeout)

	cmd := exec.CommandContext(ctx, resolved, "-p", prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("Command timed out after %d seconds", int(timeout.Seconds()))
	}
	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		lower := strings.ToLower(detail)
		if strings.Contains(lower, "auth") || strings.Contains(lower, "login") || strings.Contains(lower, "api key") {
			return "", fmt.Errorf("claude CLI authentication unavailable: %s", detail)
		}
		return "", fmt.Errorf("claude CLI failed: %s", detail)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("empty response from claude CLI")
	}
	log.Printf("ai assess done provider=claude-cli size=%d", len(text))
	return text, nil
}

// --- Anthropic API ---

type anthropicAssessmentClient struct {
	cfg Config
}

func (c *anthropicAssessmentClient) Assess(ctx context.Context, items []WorkItem, days int) (string, error) {
	if c.cfg.AnthropicAPIKey == "" {
		return "", fmt.Errorf("anthropic API key not configured")
	}

	model := c.cfg.AnthropicModel
	if model == "" {
		model = defaultAnthropicModel
	}

	timeout := c.cfg.AITimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Printf("ai assess provider=anthropic model=%s items=%d timeout=%s", model, len(items), timeout)

	client := anthropic.NewClient(option.WithAPIKey(c.cfg.AnthropicAPIKey))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAssessmentPrompt(items, days))),
		},
	})
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("Command timed out after %d seconds", int(timeout.Seconds()))
	}
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %v", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			log.Printf("ai assess done provider=anthropic size=%d tokens_in=%d tokens_out=%d",
				len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from Anthropic API")
}

// AITimeout is the bounded ceiling on one AI assessment attempt.
func (c Config) AITimeout() time.Duration {
	seconds := c.AITimeoutSeconds
	if seconds <= 0 {
		seconds = 120
	}
	return time.Duration(seconds) * time.Second
}
