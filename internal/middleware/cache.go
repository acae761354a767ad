package middleware

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-backoffice/internal/config"
)

// cachedResponse is what the response cache stores per key.
type cachedResponse struct {
    ContentType string          `json:"content_type"`
    Body        json.RawMessage `json:"body"`
}

// bodyRecorder copies what the handler writes, up to limit bytes.  overflow
// is set once the body grows past the limit; such responses are not cached.
type bodyRecorder struct {
    http.ResponseWriter
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheKey hashes the route and the raw query so filters get their own
// entries while the key length stays bounded.
func cacheKey(prefix string, c echo.Context) string {
    sum := sha256.Sum256([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
    return prefix + ":" + hex.EncodeToString(sum[:12])
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache caches the 200 JSON answers of the read-only /api listings
// (rooms, room statistics, categories) for cfg.TTL.  Every staff member
// sees the same hotel data, so entries are shared between sessions.  HTML
// pages are never stored: they embed a per-session CSRF token.  Redis
// failures fall back to calling the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg.Prefix, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
                }
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }

            ct := c.Response().Header().Get(echo.HeaderContentType)
            if c.Response().Status != http.StatusOK || rec.overflow || !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{ContentType: ct, Body: bytes.TrimSpace(rec.buf.Bytes())})
            if err != nil {
                return nil
            }
            if err := rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
                c.Logger().Warnf("response cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

// PurgeCache drops every cached /api answer after a successful write, so
// a room or category edited in the admin shows up on the next poll rather
// than after the TTL.
func PurgeCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if c.Request().Method == http.MethodGet || err != nil || c.Response().Status >= http.StatusBadRequest {
                return err
            }
            ctx := context.WithoutCancel(c.Request().Context())
            iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
            var keys []string
            for iter.Next(ctx) {
                keys = append(keys, iter.Val())
            }
            if scanErr := iter.Err(); scanErr != nil {
                c.Logger().Warnf("response cache: purge: %v", scanErr)
                return nil
            }
            if len(keys) > 0 {
                if delErr := rdb.Del(ctx, keys...).Err(); delErr != nil {
                    c.Logger().Warnf("response cache: purge: %v", delErr)
                }
            }
            return nil
        }
    }
}
