package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	PostgresDSN   string
	SupremeHandle string
	GrantTTL      time.Duration

	EnableChatOutboxRelay bool
	EnableGrantSweeper    bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "veilian"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	grantTTL := 12 * time.Hour
	if raw := strings.TrimSpace(os.Getenv("GRANT_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			grantTTL = parsed
		}
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		SupremeHandle: strings.TrimSpace(os.Getenv("SUPREME_HANDLE")),
		GrantTTL:      grantTTL,

		EnableChatOutboxRelay: envBool("ENABLE_CHAT_OUTBOX_RELAY", true),
		EnableGrantSweeper:    envBool("ENABLE_GRANT_SWEEPER", true),
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
