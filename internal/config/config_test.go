package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
app:
  name: matchday
  environment: test
  port: 8080
club_api:
  base_url: https://club.example.test/api
journal:
  filename: data/journal.db
sessions:
  idle_timeout_minutes: 60
  janitor_cron: "*/5 * * * *"
`

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("CLUB_API_TOKEN", "secret-token")
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.App.Port)
	}
	if cfg.ClubAPI.AuthToken != "secret-token" {
		t.Fatal("auth token must come from the environment")
	}
	if cfg.Sessions.IdleTimeoutMinutes != 60 {
		t.Fatalf("idle timeout = %d, want 60", cfg.Sessions.IdleTimeoutMinutes)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  name: matchday
  port: 8080
club_api:
  base_url: https://club.example.test/api
journal:
  filename: data/journal.db
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Journal.RetentionDays != 30 {
		t.Fatalf("retention = %d, want default 30", cfg.Journal.RetentionDays)
	}
	if cfg.Sessions.IdleTimeoutMinutes != 120 {
		t.Fatalf("idle timeout = %d, want default 120", cfg.Sessions.IdleTimeoutMinutes)
	}
	if cfg.Sessions.JanitorCron != "*/15 * * * *" {
		t.Fatalf("janitor cron = %q, want default", cfg.Sessions.JanitorCron)
	}
}

func TestLoadRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing app name",
			yaml:    strings.Replace(validConfig, "name: matchday", "name: \"\"", 1),
			wantErr: "app name",
		},
		{
			name:    "missing port",
			yaml:    strings.Replace(validConfig, "port: 8080", "port: 0", 1),
			wantErr: "port",
		},
		{
			name:    "missing base url",
			yaml:    strings.Replace(validConfig, "base_url: https://club.example.test/api", "base_url: \"\"", 1),
			wantErr: "base_url",
		},
		{
			name:    "missing journal filename",
			yaml:    strings.Replace(validConfig, "filename: data/journal.db", "filename: \"\"", 1),
			wantErr: "journal filename",
		},
		{
			name:    "bad janitor cron",
			yaml:    strings.Replace(validConfig, `janitor_cron: "*/5 * * * *"`, `janitor_cron: "not a cron"`, 1),
			wantErr: "cron",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
