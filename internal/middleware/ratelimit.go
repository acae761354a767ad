package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-backoffice/internal/config"
)

// MsgTooManyAttempts answers a throttled request.
const MsgTooManyAttempts = "Trop de tentatives, réessayez dans quelques instants."

// throttleKey counts per route and per caller: the signed-in user when
// there is one, the client address otherwise (the login form).
func throttleKey(prefix string, c echo.Context) string {
    who := "ip:" + c.RealIP()
    if id := userKey(c); id != "anon" {
        who = "user:" + id
    }
    return prefix + ":" + c.Request().Method + ":" + c.Path() + ":" + who
}

// NewThrottle allows cfg.Max requests per key in each cfg.Window, counted
// in Redis so every server instance shares the budget.  It guards the
// login form against password guessing and the export against repeated
// full-table reads.  When Redis is unavailable requests go through.
func NewThrottle(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx := c.Request().Context()
            key := throttleKey(cfg.Prefix, c)

            var count *redis.IntCmd
            var ttl *redis.DurationCmd
            _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
                count = p.Incr(ctx, key)
                ttl = p.PTTL(ctx, key)
                return nil
            })
            if err != nil {
                c.Logger().Warnf("throttle %s: %v", key, err)
                return next(c)
            }
            // A fresh counter has no expiry yet; the window starts now.
            if ttl.Val() < 0 {
                if err := rdb.PExpire(ctx, key, cfg.Window).Err(); err != nil {
                    c.Logger().Warnf("throttle %s: %v", key, err)
                }
            }

            n := int(count.Val())
            remaining := cfg.Max - n
            if remaining < 0 {
                remaining = 0
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
            h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
            if n <= cfg.Max {
                return next(c)
            }

            wait := retryAfter(ttl.Val(), cfg.Window)
            h.Set("Retry-After", strconv.Itoa(wait))
            if WantsJSON(c) {
                return c.JSON(http.StatusTooManyRequests, echo.Map{"success": false, "error": MsgTooManyAttempts, "retry_after": wait})
            }
            return c.String(http.StatusTooManyRequests, MsgTooManyAttempts)
        }
    }
}

// retryAfter rounds the remaining window up to whole seconds.  A key
// without expiry (negative TTL) waits a full window.
func retryAfter(ttl, window time.Duration) int {
    if ttl <= 0 {
        ttl = window
    }
    return int((ttl + time.Second - 1) / time.Second)
}
