package middleware

// identity.go holds helpers shared across middleware files to read what
// SessionAuth stored in the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated staff id, or 0 before SessionAuth ran.
func UserID(c echo.Context) uint64 {
    if v, ok := c.Get("user_id").(uint64); ok {
        return v
    }
    return 0
}

// userKey identifies the caller in rate-limit keys.  Requests
// without a session are keyed as "anon".
func userKey(c echo.Context) string {
    if id := UserID(c); id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
