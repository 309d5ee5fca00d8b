package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/slack-go/slack"
)

// DeliverReport performs the side effect for a rendered report: print, write
// a file, open the browser, or post to Slack. Returns the written path for
// file-backed channels. Failures here are fatal to the run.
func DeliverReport(cfg Config, out RenderedOutput) (string, error) {
	switch out.Channel {
	case OutputConsole:
		fmt.Print(out.Content)
		return "", nil

	case OutputHTML, OutputText, OutputEmail:
		return writeReportFile(cfg, out)

	case OutputBrowser:
		path, err := writeReportFile(cfg, out)
		if err != nil {
			return "", err
		}
		if err := openInBrowser(path); err != nil {
			log.Printf("report open browser error: %v", err)
		}
		return path, nil

	case OutputSlack:
		if cfg.SlackBotToken == "" || cfg.SlackChannelID == "" {
			return "", fmt.Errorf("slack output requires slack_bot_token and slack_channel_id")
		}
		api := slack.New(cfg.SlackBotToken)
		if _, _, err := api.PostMessage(cfg.SlackChannelID, slack.MsgOptionText(out.Content, false)); err != nil {
			return "", fmt.Errorf("posting report to slack channel %s: %w", cfg.SlackChannelID, err)
		}
		log.Printf("report posted to slack channel=%s", cfg.SlackChannelID)
		return "", nil

	default:
		return "", fmt.Errorf("no sink for output channel %q", out.Channel)
	}
}

func writeReportFile(cfg Config, out RenderedOutput) (string, error) {
	dir := resolveOutputDir(cfg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, out.Filename)
	if err := os.WriteFile(path, []byte(out.Content), 0644); err != nil {
		return "", fmt.Errorf("writing report to %s: %w", path, err)
	}
	log.Printf("report saved to %s", path)
	return path, nil
}

// resolveOutputDir prefers the configured directory, then Downloads, then
// Documents, then the home directory itself.
func resolveOutputDir(cfg Config) string {
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	for _, name := range []string{"Downloads", "Documents"} {
		dir := filepath.Join(home, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return home
}

func openInBrowser(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
