package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Port string

	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayTimeout time.Duration

	StatusCacheTTL time.Duration
	OverrideTTL    time.Duration

	RetryMaxAttempts  int
	RetryInitialDelay time.Duration

	// Connectors overrides the backend connector name per integration id,
	// parsed from "id=connector,id=connector".
	Connectors map[string]string

	RedisURL      string
	MongoURI      string
	MongoDatabase string
}

// Load reads configuration from the environment, applying defaults for
// everything but the gateway API key.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		GatewayBaseURL:    getenv("GATEWAY_BASE_URL", "http://localhost:9000"),
		GatewayAPIKey:     os.Getenv("GATEWAY_API_KEY"),
		GatewayTimeout:    getduration("GATEWAY_TIMEOUT", 10*time.Second),
		StatusCacheTTL:    getduration("STATUS_CACHE_TTL", 60*time.Second),
		OverrideTTL:       getduration("DISCONNECT_OVERRIDE_TTL", time.Hour),
		RetryMaxAttempts:  getint("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: getduration("RETRY_INITIAL_DELAY", time.Second),
		Connectors:        parseConnectors(os.Getenv("INTEGRATION_CONNECTORS")),
		RedisURL:          os.Getenv("REDIS_URL"),
		MongoURI:          getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getenv("MONGODB_DATABASE", "connect"),
	}

	if cfg.GatewayAPIKey == "" {
		return cfg, fmt.Errorf("GATEWAY_API_KEY environment variable is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseConnectors(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	connectors := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			connectors[parts[0]] = parts[1]
		}
	}
	return connectors
}
