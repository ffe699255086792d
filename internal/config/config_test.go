package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(appPortEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load()

	if cfg.Server.Port != "8000" {
		t.Fatalf("default port = %s", cfg.Server.Port)
	}
	if cfg.Ingest.MaxConcurrentSources != 8 {
		t.Fatalf("default concurrency = %d", cfg.Ingest.MaxConcurrentSources)
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatalf("default timezone must resolve")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  dsn: postgres://file/db
server:
  port: "9100"
  siteUrl: https://ohtani.example.com
ingest:
  maxConcurrentSources: 3
  keywords: ["Ohtani"]
sources:
  - name: Sports Wire
    rssUrl: https://news.example.com/rss
    baseUrl: https://news.example.com
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env/db")
	t.Setenv(appPortEnv, "")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/db" {
		t.Fatalf("env override must win, got %s", cfg.Database.DSN)
	}
	if cfg.Server.Port != "9100" {
		t.Fatalf("file port not applied: %s", cfg.Server.Port)
	}
	if cfg.Server.SiteURL != "https://ohtani.example.com" {
		t.Fatalf("file site url not applied: %s", cfg.Server.SiteURL)
	}
	if cfg.Ingest.MaxConcurrentSources != 3 {
		t.Fatalf("file concurrency not applied: %d", cfg.Ingest.MaxConcurrentSources)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level env not applied: %s", cfg.Logging.Level)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].RSSURL != "https://news.example.com/rss" {
		t.Fatalf("sources not loaded: %+v", cfg.Sources)
	}
}
