package config

import "time"

// CacheConfig sets the Redis response cache of the read-only /api
// listings.  Entries are also purged after every admin write.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int // larger answers are served but not stored
}

// LoadCacheConfig reads CACHE_ENABLED, CACHE_TTL, CACHE_PREFIX and
// CACHE_MAX_BODY_BYTES.
func LoadCacheConfig() CacheConfig {
    cc := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "backoffice:api"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 512<<10),
    }
    if cc.TTL <= 0 {
        cc.TTL = 30 * time.Second
    }
    return cc
}
