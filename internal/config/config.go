package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Agent   AgentConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Addr is derived from Port.
	Addr string
}

// BackendConfig points at the external AI service.
type BackendConfig struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"2m"`
}

// AgentConfig selects the persona and the composer policy.
type AgentConfig struct {
	Type                string `env:"AGENT_TYPE"`
	Ruleset             string `env:"RULESET"`
	QueryEnabled        bool   `env:"DA_QUERY_ENABLED" envDefault:"false"`
	ClearQueryAfterSend bool   `env:"DA_CLEAR_QUERY_AFTER_SEND" envDefault:"false"`
	UserName            string `env:"USER_DISPLAY_NAME" envDefault:"You"`
	CatalogPath         string `env:"PERSONA_CATALOG_PATH"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := listenAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	baseURL, err := normalizeBaseURL(cfg.Backend.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.Backend.BaseURL = baseURL

	if cfg.Backend.Timeout < 0 {
		return nil, fmt.Errorf("invalid API_TIMEOUT value %q: must not be negative", cfg.Backend.Timeout)
	}

	cfg.Agent.Type = strings.TrimSpace(cfg.Agent.Type)
	cfg.Agent.Ruleset = strings.TrimSpace(cfg.Agent.Ruleset)
	if strings.TrimSpace(cfg.Agent.UserName) == "" {
		cfg.Agent.UserName = "You"
	}

	return cfg, nil
}

// listenAddr 解析服务器监听地址。
func listenAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid API_BASE_URL value %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid API_BASE_URL value %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid API_BASE_URL value %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
