package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig controls the Redis token-bucket limiter applied to the
// auth and booking endpoints. When Enabled is false or no Redis client is
// available the limiter becomes a no-op.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // "ip" or "ip_route"
	Prefix         string
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults allow a small burst with a steady refill.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        envOr("RATELIMIT_ENABLED", "true") == "true",
		Capacity:       atoi(envOr("RATELIMIT_CAPACITY", "10")),
		RefillTokens:   atoi(envOr("RATELIMIT_REFILL_TOKENS", "5")),
		RefillInterval: parseDur(envOr("RATELIMIT_REFILL_INTERVAL", "1s")),
		TTL:            parseDur(envOr("RATELIMIT_TTL", "10m")),
		KeyStrategy:    strings.ToLower(envOr("RATELIMIT_KEY_STRATEGY", "ip_route")),
		Prefix:         envOr("RATELIMIT_PREFIX", "rl"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
