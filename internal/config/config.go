// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Transports accepted by CREDMCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	N8NAPIURL     string
	N8NAPIKey     string
	N8NAPITimeout time.Duration
	Transport     string
	ListenAddr    string
	DBPath        string
	CatalogFile   string
	LogLevel      slog.Level
}

// HasN8NAPI returns true when both N8NAPIURL and N8NAPIKey are non-empty.
// Used by the composition root to decide whether to register the credential
// tools at all.
func (c *Config) HasN8NAPI() bool {
	return c.N8NAPIURL != "" && c.N8NAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// The n8n API (N8N_API_URL, N8N_API_KEY) is optional; without it only the
// catalog tools are served, but a URL without a key is rejected.
// Optional variables with defaults: N8N_API_TIMEOUT (30s), CREDMCP_TRANSPORT
// (stdio), CREDMCP_LISTEN_ADDR (127.0.0.1:8080), CREDMCP_DB_PATH (credmcp.db),
// CREDMCP_CATALOG_FILE (none), CREDMCP_LOG_LEVEL (info).
func Load() (*Config, error) {
	apiURL := strings.TrimSpace(os.Getenv("N8N_API_URL"))
	apiKey := strings.TrimSpace(os.Getenv("N8N_API_KEY"))
	if apiURL != "" && apiKey == "" {
		return nil, errors.New("N8N_API_KEY is required when N8N_API_URL is set")
	}

	timeout := 30 * time.Second
	if v, ok := os.LookupEnv("N8N_API_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("N8N_API_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("N8N_API_TIMEOUT must be positive, got %s", parsed)
		}
		timeout = parsed
	}

	transport := TransportStdio
	if v, ok := os.LookupEnv("CREDMCP_TRANSPORT"); ok && v != "" {
		transport = strings.ToLower(strings.TrimSpace(v))
	}
	if transport != TransportStdio && transport != TransportHTTP {
		return nil, fmt.Errorf("CREDMCP_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, transport)
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CREDMCP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "credmcp.db"
	if v, ok := os.LookupEnv("CREDMCP_DB_PATH"); ok {
		dbPath = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("CREDMCP_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CREDMCP_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		N8NAPIURL:     apiURL,
		N8NAPIKey:     apiKey,
		N8NAPITimeout: timeout,
		Transport:     transport,
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		CatalogFile:   os.Getenv("CREDMCP_CATALOG_FILE"),
		LogLevel:      logLevel,
	}, nil
}
