// Package config loads service configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Assistant service (OpenAI-compatible)
	OpenAIAPIKey string
	OpenAIBaseURL string
	DefaultModel string

	// Direct completion providers
	LLMProvider     string
	LLMModel        string
	AnthropicAPIKey string
	OllamaHost      string

	// Search service (Perplexity-compatible)
	SearchAPIKey  string
	SearchBaseURL string
	SearchModel   string

	// Trends service
	TrendsBaseURL string

	// HTTP server
	Port          string
	SessionSecret string

	// Run polling
	PollInitialDelay time.Duration
	PollMaxAttempts  int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Provider names for the direct completion path.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "projectica"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "app"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		DefaultModel:  getEnv("PROJECTICA_DEFAULT_MODEL", "gpt-4"),

		LLMProvider:     getEnv("PROJECTICA_LLM_PROVIDER", ProviderOpenAI),
		LLMModel:        getEnv("PROJECTICA_LLM_MODEL", "gpt-4"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		SearchAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
		SearchBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		SearchModel:   getEnv("PERPLEXITY_MODEL", "sonar-pro"),

		TrendsBaseURL: getEnv("TRENDS_BASE_URL", "http://localhost:8090"),

		Port:          getEnv("PROJECTICA_PORT", "8480"),
		SessionSecret: getEnv("PROJECTICA_SESSION_SECRET", ""),

		PollInitialDelay: getDuration("PROJECTICA_POLL_INITIAL_DELAY", 500*time.Millisecond),
		PollMaxAttempts:  getInt("PROJECTICA_POLL_MAX_ATTEMPTS", 10),

		LogFile:  getEnv("PROJECTICA_LOG_FILE", "/tmp/projectica.log"),
		LogLevel: parseLogLevel(getEnv("PROJECTICA_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
