package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "TFS_URL", "TFS_PROJECT", "TFS_PAT", "TFS_USER_DISPLAY_NAME",
		"DEFAULT_OUTPUT", "OUTPUT_DIR", "AI_PROVIDER", "CLAUDE_CLI_PATH",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "AI_TIMEOUT_SECONDS",
		"SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID", "DB_PATH", "ANALYSIS_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

const minimalConfig = `
tfs_url: https://tfs.example.com/tfs/Collection
project_name: MyProject
pat: secret
user_display_name: Jordan Kim
`

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultOutput != "console" {
		t.Errorf("DefaultOutput = %q, want console", cfg.DefaultOutput)
	}
	if cfg.AIProvider != "claude-cli" {
		t.Errorf("AIProvider = %q, want claude-cli", cfg.AIProvider)
	}
	if cfg.AITimeoutSeconds != 120 {
		t.Errorf("AITimeoutSeconds = %d, want 120", cfg.AITimeoutSeconds)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath default not applied")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TFS_PROJECT", "OtherProject")
	t.Setenv("DEFAULT_OUTPUT", "html")
	t.Setenv("AI_TIMEOUT_SECONDS", "30")

	cfg, err := LoadConfig(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ProjectName != "OtherProject" {
		t.Errorf("ProjectName = %q, want env override", cfg.ProjectName)
	}
	if cfg.DefaultOutput != "html" {
		t.Errorf("DefaultOutput = %q, want html", cfg.DefaultOutput)
	}
	if cfg.AITimeoutSeconds != 30 {
		t.Errorf("AITimeoutSeconds = %d, want 30", cfg.AITimeoutSeconds)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing required field",
			content: "tfs_url: https://tfs.example.com\nproject_name: P\npat: x\n",
			wantErr: "user_display_name",
		},
		{
			name:    "bad output method",
			content: minimalConfig + "default_output: pdf\n",
			wantErr: "default_output",
		},
		{
			name:    "bad ai provider",
			content: minimalConfig + "ai_provider: openai\n",
			wantErr: "ai_provider",
		},
		{
			name:    "anthropic requires key",
			content: minimalConfig + "ai_provider: anthropic\n",
			wantErr: "anthropic_api_key",
		},
		{
			name:    "bad schedule",
			content: minimalConfig + "analysis_schedule: not-cron\n",
			wantErr: "analysis_schedule",
		},
		{
			name:    "bad timeout",
			content: minimalConfig + "ai_timeout_seconds: -5\n",
			wantErr: "ai_timeout_seconds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigValidSchedule(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(writeConfigFile(t, minimalConfig+"analysis_schedule: \"0 8 * * 1-5\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.AnalysisSchedule != "0 8 * * 1-5" {
		t.Errorf("AnalysisSchedule = %q", cfg.AnalysisSchedule)
	}
}
