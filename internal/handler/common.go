package handler // handler defines the http handlers of the back office

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/middleware"
    "github.com/iliyamo/hotel-backoffice/internal/service"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// Base carries what every admin page needs to render its layout: the
// hotel name and the theme colors, both read from the settings store.
type Base struct {
    Settings *service.Settings
}

// page builds the layout data of an admin page.
func (b *Base) page(c echo.Context, title, active string, data any) view.Page {
    ctx := c.Request().Context()
    role, _ := c.Get("role").(string)
    return view.Page{
        Title:  title,
        Active: active,
        Hotel:  b.Settings.HotelInfo(ctx).Name,
        Theme:  b.Settings.Theme(ctx),
        CSRF:   middleware.CSRFToken(c),
        Role:   role,
        Data:   data,
    }
}

// render writes the page, status 422 when an error message is shown.
func render(c echo.Context, name string, p view.Page) error {
    status := http.StatusOK
    if p.Error != "" {
        status = http.StatusUnprocessableEntity
    }
    return c.Render(status, name, p)
}

// userMessage turns a service error into the text shown above a form.
// Validation errors carry their own French message; anything else is
// logged with the request id and replaced by a generic one.
func userMessage(c echo.Context, err error) string {
    var ve *service.ValidationError
    if errors.As(err, &ve) {
        return ve.Message
    }
    c.Logger().Errorf("request_id=%s: %v", requestID(c), err)
    return service.MsgSaveFailed
}

func requestID(c echo.Context) string {
    return c.Response().Header().Get(echo.HeaderXRequestID)
}

// formUint parses a numeric form value; zero means missing or invalid.
func formUint(c echo.Context, name string) uint64 {
    n, err := strconv.ParseUint(strings.TrimSpace(c.FormValue(name)), 10, 64)
    if err != nil {
        return 0
    }
    return n
}

func queryUint(c echo.Context, name string) uint64 {
    n, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam(name)), 10, 64)
    if err != nil {
        return 0
    }
    return n
}

// optionalInt parses s, returning nil for an empty or invalid value.
func optionalInt(s string) *int {
    n, err := strconv.Atoi(strings.TrimSpace(s))
    if err != nil {
        return nil
    }
    return &n
}

// checked reports whether a checkbox was ticked.
func checked(c echo.Context, name string) bool {
    switch c.FormValue(name) {
    case "1", "on", "true":
        return true
    }
    return false
}

// translations collects the name_<locale> fields of a form.
func translations(c echo.Context, locales []string) map[string]string {
    out := make(map[string]string, len(locales))
    for _, l := range locales {
        if v := strings.TrimSpace(c.FormValue("name_" + l)); v != "" {
            out[l] = v
        }
    }
    return out
}
