package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	MatchCategoricalWeight float64
	MatchSemanticWeight    float64
	MatchTopK              int
	GrantClosingSoonDays   int
	WorkerPollInterval     time.Duration

	EnableMatchRefreshSweep bool
	EnableGrantStatusSweep  bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "grantstw"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		MatchCategoricalWeight: envFloat("MATCH_CATEGORICAL_WEIGHT", 0.4),
		MatchSemanticWeight:    envFloat("MATCH_SEMANTIC_WEIGHT", 0.6),
		MatchTopK:              envInt("MATCH_TOP_K", 20),
		GrantClosingSoonDays:   envInt("GRANT_CLOSING_SOON_DAYS", 14),
		WorkerPollInterval:     envDuration("WORKER_POLL_INTERVAL", 30*time.Second),

		EnableMatchRefreshSweep: envBool("ENABLE_MATCH_REFRESH_SWEEP", true),
		EnableGrantStatusSweep:  envBool("ENABLE_GRANT_STATUS_SWEEP", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
