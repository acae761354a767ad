package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that lets the request through only when
// the role stored by SessionAuth is one of roles.  Theme and hotel settings
// are admin-only; day-to-day pages accept every staff role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                if WantsJSON(c) {
                    return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
                }
                return c.String(http.StatusForbidden, "Accès réservé aux administrateurs.")
            }
            return next(c)
        }
    }
}
