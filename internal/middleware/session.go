package middleware // middleware holds the request filters shared by the admin routes

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/utils"
)

// SessionCookie is the name of the cookie carrying the signed session.
const SessionCookie = "backoffice_session"

// SessionValidator resolves a hashed session id to its owner.  It is
// satisfied by *repository.SessionRepo.
type SessionValidator interface {
    Validate(ctx context.Context, tokenHash string) (uint64, error)
}

// SessionAuth returns an Echo middleware that requires a valid session
// cookie.  The cookie holds a JWT signed with secret whose sid claim must
// match a live row in staff_sessions, so a logout or a purge ends the
// session even though the JWT itself has not expired.  On success the user
// id (uint64), role and hashed session id are stored in the context under
// "user_id", "role" and "session_hash".
//
// Browsers are redirected to /login; API calls receive 401 JSON so the
// polling client can tell an expired session from a server error.
func SessionAuth(secret string, sessions SessionValidator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(SessionCookie)
            if err != nil || ck.Value == "" {
                return unauthenticated(c)
            }
            claims, err := utils.ParseSessionToken(secret, ck.Value)
            if err != nil {
                return unauthenticated(c)
            }
            hash := utils.HashSessionID(claims.SessionID)
            uid, err := sessions.Validate(c.Request().Context(), hash)
            if err != nil || uid != claims.UserID {
                return unauthenticated(c)
            }

            c.Set("user_id", claims.UserID)
            c.Set("role", claims.Role)
            c.Set("session_hash", hash)
            return next(c)
        }
    }
}

// WantsJSON reports whether the request comes from a script rather than a
// page load: anything under /api/ or asking for JSON explicitly.
func WantsJSON(c echo.Context) bool {
    if strings.HasPrefix(c.Request().URL.Path, "/api/") {
        return true
    }
    return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func unauthenticated(c echo.Context) error {
    if WantsJSON(c) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
    }
    return c.Redirect(http.StatusSeeOther, "/login")
}
