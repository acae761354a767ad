package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey is where the token for the current request is stored;
// templates read it to fill the hidden csrf_token field.
const CSRFContextKey = "csrf"

// MsgCSRFExpired is shown when a form is posted with a stale token.
const MsgCSRFExpired = "Votre session a expiré, veuillez recharger la page."

// CSRF protects every state-changing form.  The token travels in a cookie
// and must be echoed back either as the csrf_token form field or, for
// scripts, the X-CSRF-Token header.
func CSRF(secure bool) echo.MiddlewareFunc {
    return echomw.CSRFWithConfig(echomw.CSRFConfig{
        TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
        ContextKey:     CSRFContextKey,
        CookieName:     "backoffice_csrf",
        CookiePath:     "/",
        CookieHTTPOnly: true,
        CookieSecure:   secure,
        CookieSameSite: http.SameSiteStrictMode,
        ErrorHandler: func(err error, c echo.Context) error {
            if WantsJSON(c) {
                return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": MsgCSRFExpired})
            }
            return c.String(http.StatusForbidden, MsgCSRFExpired)
        },
    })
}

// CSRFToken returns the token of the current request, empty when the CSRF
// middleware did not run.
func CSRFToken(c echo.Context) string {
    s, _ := c.Get(CSRFContextKey).(string)
    return s
}
