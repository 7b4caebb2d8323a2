package config

import (
	"os"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "ALLOWED_ORIGINS", "API_BASE_URL", "API_TIMEOUT", "AGENT_TYPE", "RULESET",
	"DA_QUERY_ENABLED", "DA_CLEAR_QUERY_AFTER_SEND", "USER_DISPLAY_NAME", "PERSONA_CATALOG_PATH",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" || cfg.Backend.Timeout != 2*time.Minute {
		t.Fatalf("unexpected backend config %+v", cfg.Backend)
	}
	if cfg.Agent.Type != "" || cfg.Agent.QueryEnabled || cfg.Agent.UserName != "You" {
		t.Fatalf("unexpected agent config %+v", cfg.Agent)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("API_BASE_URL", "https://ai.example.com/api/")
	t.Setenv("API_TIMEOUT", "45s")
	t.Setenv("AGENT_TYPE", " data-analyst ")
	t.Setenv("DA_QUERY_ENABLED", "true")
	t.Setenv("DA_CLEAR_QUERY_AFTER_SEND", "true")
	t.Setenv("RULESET", "bg3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Backend.BaseURL != "https://ai.example.com/api" || cfg.Backend.Timeout != 45*time.Second {
		t.Fatalf("unexpected backend config %+v", cfg.Backend)
	}
	if cfg.Agent.Type != "data-analyst" || !cfg.Agent.QueryEnabled || !cfg.Agent.ClearQueryAfterSend || cfg.Agent.Ruleset != "bg3" {
		t.Fatalf("unexpected agent config %+v", cfg.Agent)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"port with space": {"PORT", "80 80"},
		"relative url":    {"API_BASE_URL", "/api"},
		"bad scheme":      {"API_BASE_URL", "ftp://ai.example.com"},
		"bad bool":        {"DA_QUERY_ENABLED", "sometimes"},
		"bad duration":    {"API_TIMEOUT", "soon"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", kv[0], kv[1])
			}
		})
	}
}
