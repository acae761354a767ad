package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "hotel", "DB_HOST": "127.0.0.1",
        "DB_PORT": "3306", "DB_NAME": "hotel", "JWT_SECRET": "s", "SESSION_TTL_MIN": "480", "BCRYPT_COST": "10",
    } {
        t.Setenv(k, v)
    }
}

func TestLoadDefaults(t *testing.T) {
    setRequired(t)
    t.Setenv("DEFAULT_VAT_RATE", "")
    t.Setenv("TIMEZONE", "")

    cfg := Load()
    require.Equal(t, "8080", cfg.Port)
    require.Equal(t, 480, cfg.SessionTTLMin)
    require.Equal(t, "10", cfg.DefaultVATRate)
    require.Equal(t, "€", cfg.CurrencySymbol)
    require.Equal(t, "Europe/Paris", cfg.Timezone)
}

func TestLocationFallsBackToUTC(t *testing.T) {
    require.Equal(t, time.UTC, Config{Timezone: "Mars/Olympus"}.Location())
    require.Equal(t, "UTC", Config{Timezone: "UTC"}.Location().String())
}

func TestLoadDotEnvKeepsEnvironment(t *testing.T) {
    path := filepath.Join(t.TempDir(), ".env")
    require.NoError(t, os.WriteFile(path, []byte("HOTEL_TEST_A=file\nHOTEL_TEST_B=file\n"), 0o600))
    t.Setenv("HOTEL_TEST_A", "env")
    t.Setenv("HOTEL_TEST_B", "")
    os.Unsetenv("HOTEL_TEST_B")

    LoadDotEnv(path)
    require.Equal(t, "env", os.Getenv("HOTEL_TEST_A"))
    require.Equal(t, "file", os.Getenv("HOTEL_TEST_B"))
    os.Unsetenv("HOTEL_TEST_B")

    LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestRedisHostPortWinOverAddr(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_HOST", "")
    t.Setenv("REDIS_PORT", "")
    t.Setenv("REDIS_TLS", "1")
    rc := LoadRedisConfig()
    require.Equal(t, "cache:6380", rc.Addr)
    require.True(t, rc.TLS)

    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6379")
    require.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestQueueConfig(t *testing.T) {
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://broker:5672/")
    t.Setenv("QUEUE_ENABLED", "off")
    qc := LoadQueueConfig()
    require.Equal(t, "amqp://broker:5672/", qc.URL)
    require.False(t, qc.Enabled)

    t.Setenv("RABBITMQ_URL", "amqp://rabbit:5672/")
    t.Setenv("QUEUE_ENABLED", "")
    qc = LoadQueueConfig()
    require.Equal(t, "amqp://rabbit:5672/", qc.URL)
    require.True(t, qc.Enabled)
}

func TestRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_MAX", "0")
    t.Setenv("RATE_LIMIT_WINDOW", "10ms")
    rl := LoadRateLimitConfig()
    require.Equal(t, 1, rl.Max)
    require.Equal(t, time.Second, rl.Window)

    t.Setenv("RATE_LIMIT_MAX", "")
    t.Setenv("RATE_LIMIT_WINDOW", "")
    rl = LoadRateLimitConfig()
    require.Equal(t, 10, rl.Max)
    require.Equal(t, time.Minute, rl.Window)
}

func TestCacheConfig(t *testing.T) {
    t.Setenv("CACHE_ENABLED", "false")
    t.Setenv("CACHE_TTL", "nonsense")
    cc := LoadCacheConfig()
    require.False(t, cc.Enabled)
    require.Equal(t, 30*time.Second, cc.TTL)
    require.Equal(t, "backoffice:api", cc.Prefix)
}
