// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type ClubAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Loaded from environment
	AuthToken string `yaml:"-"`
}

type JournalConfig struct {
	Filename      string `yaml:"filename"`
	RetentionDays int    `yaml:"retention_days"`
}

type SessionsConfig struct {
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
	JanitorCron        string `yaml:"janitor_cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	ClubAPI  ClubAPIConfig  `yaml:"club_api"`
	Journal  JournalConfig  `yaml:"journal"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Sensitive values come from the environment only
	cfg.ClubAPI.AuthToken = os.Getenv("CLUB_API_TOKEN")

	applyDefaults(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = 30
	}
	if cfg.Sessions.IdleTimeoutMinutes == 0 {
		cfg.Sessions.IdleTimeoutMinutes = 120
	}
	if cfg.Sessions.JanitorCron == "" {
		cfg.Sessions.JanitorCron = "*/15 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.ClubAPI.BaseURL == "" {
		return fmt.Errorf("club api base_url is required")
	}
	if c.Journal.Filename == "" {
		return fmt.Errorf("journal filename is required")
	}
	if _, err := cron.ParseStandard(c.Sessions.JanitorCron); err != nil {
		return fmt.Errorf("invalid janitor cron expression %q: %w", c.Sessions.JanitorCron, err)
	}
	return nil
}
