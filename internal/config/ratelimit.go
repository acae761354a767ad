package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig sets the request budget of the throttled endpoints: the
// login form and the order export.
type RateLimitConfig struct {
    Enabled bool
    Max     int           // requests allowed per window and per caller
    Window  time.Duration // length of a counting window
    Prefix  string        // Redis key prefix
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_MAX,
// RATE_LIMIT_WINDOW and RATE_LIMIT_PREFIX.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Max:     envInt("RATE_LIMIT_MAX", 10),
        Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "backoffice:rl"),
    }
    if rl.Max < 1 {
        rl.Max = 1
    }
    if rl.Window < time.Second {
        rl.Window = time.Second
    }
    return rl
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch os.Getenv(k) {
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return dur
    }
    return d
}
