package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TFSURL              string `yaml:"tfs_url"`
	ProjectName         string `yaml:"project_name"`
	PersonalAccessToken string `yaml:"pat"`
	UserDisplayName     string `yaml:"user_display_name"`

	DefaultOutput string `yaml:"default_output"`
	OutputDir     string `yaml:"output_dir"`

	AIProvider       string `yaml:"ai_provider"` // "claude-cli" or "anthropic"
	ClaudeCLIPath    string `yaml:"claude_cli_path"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	AnthropicModel   string `yaml:"anthropic_model"`
	AITimeoutSeconds int    `yaml:"ai_timeout_seconds"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	DBPath           string `yaml:"db_path"`
	AnalysisSchedule string `yaml:"analysis_schedule"` // 5-field cron expression for watch mode
}

// LoadConfig reads the yaml config (path argument, else CONFIG_PATH env,
// else the default location), applies env-var overrides and defaults, and
// validates. The result is passed by value into the pipeline; nothing in the
// core reads ambient state after this.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		log.Printf("Loaded config from %s", path)
	}

	// Env vars override YAML values
	envOverride(&cfg.TFSURL, "TFS_URL")
	envOverride(&cfg.ProjectName, "TFS_PROJECT")
	envOverride(&cfg.PersonalAccessToken, "TFS_PAT")
	envOverride(&cfg.UserDisplayName, "TFS_USER_DISPLAY_NAME")
	envOverride(&cfg.DefaultOutput, "DEFAULT_OUTPUT")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.AIProvider, "AI_PROVIDER")
	envOverride(&cfg.ClaudeCLIPath, "CLAUDE_CLI_PATH")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	envOverrideInt(&cfg.AITimeoutSeconds, "AI_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.AnalysisSchedule, "ANALYSIS_SCHEDULE")

	// Defaults
	if cfg.DefaultOutput == "" {
		cfg.DefaultOutput = string(OutputConsole)
	}
	if cfg.AIProvider == "" {
		cfg.AIProvider = "claude-cli"
	}
	if cfg.AITimeoutSeconds == 0 {
		cfg.AITimeoutSeconds = 120
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(configDir(), "tfs-analyzer.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	required := []struct{ name, val string }{
		{"tfs_url", c.TFSURL},
		{"project_name", c.ProjectName},
		{"pat", c.PersonalAccessToken},
		{"user_display_name", c.UserDisplayName},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("required config '%s' is not set (via config file or env var)", r.name)
		}
	}

	switch OutputChannel(c.DefaultOutput) {
	case OutputConsole, OutputBrowser, OutputHTML, OutputText, OutputEmail, OutputSlack:
	default:
		return fmt.Errorf("default_output must be one of console, browser, html, text, email, slack; got '%s'", c.DefaultOutput)
	}

	switch c.AIProvider {
	case "claude-cli":
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required when ai_provider=anthropic")
		}
	default:
		return fmt.Errorf("ai_provider must be 'claude-cli' or 'anthropic', got '%s'", c.AIProvider)
	}

	if c.AITimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai_timeout_seconds '%d': must be >= 1", c.AITimeoutSeconds)
	}

	if c.AnalysisSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.AnalysisSchedule); err != nil {
			return fmt.Errorf("invalid analysis_schedule '%s': %w", c.AnalysisSchedule, err)
		}
	}
	return nil
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tfs-analyzer")
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
