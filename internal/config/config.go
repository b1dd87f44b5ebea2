// Package config assembles pipeline configuration from an optional YAML
// file and environment variables. Every setting has a safe default so the
// gate degrades gracefully instead of crashing when nothing is set.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up when no config path is given.
const DefaultFile = "fring.yaml"

// OllamaConfig configures the text-generation service.
type OllamaConfig struct {
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
	Disabled bool   `yaml:"disabled"`
}

// SlackConfig configures notification delivery.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	BotToken   string `yaml:"botToken"`
	ChannelID  string `yaml:"channelId"`
}

// Config is the full pipeline configuration.
type Config struct {
	Project        string       `yaml:"project"`
	Environment    string       `yaml:"environment"`
	TriggeredBy    string       `yaml:"triggeredBy"`
	Partition      string       `yaml:"partition"`
	ReportDir      string       `yaml:"reportDir"`
	HTMLReportPath string       `yaml:"htmlReportPath"`
	HistoryLimit   int          `yaml:"historyLimit"`
	DatabaseURL    string       `yaml:"databaseUrl"`
	Ollama         OllamaConfig `yaml:"ollama"`
	Slack          SlackConfig  `yaml:"slack"`
}

// Load builds a Config: defaults, then the YAML file (the explicit path
// must parse; the default file is optional), then environment overrides.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := defaults()

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit:
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Project:        "AI-Powered Testing",
		Environment:    "QA",
		TriggeredBy:    "QA Automation",
		Partition:      "DEFAULT",
		ReportDir:      "reports",
		HTMLReportPath: "tests/smart-report.html",
		HistoryLimit:   10,
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Project, "PROJECT_NAME")
	setString(&cfg.Environment, "ENV")
	setString(&cfg.TriggeredBy, "USER_EMAIL")
	setString(&cfg.Partition, "CARRIER")
	setString(&cfg.ReportDir, "REPORT_DIR")
	setString(&cfg.HTMLReportPath, "HTML_REPORT_PATH")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Ollama.URL, "OLLAMA_URL")
	setString(&cfg.Ollama.Model, "OLLAMA_MODEL")
	setString(&cfg.Slack.WebhookURL, "SLACK_WEBHOOK_URL")
	setString(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&cfg.Slack.ChannelID, "SLACK_CHANNEL_ID")

	if v := os.Getenv("OLLAMA_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Ollama.Disabled = b
		}
	}
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
