// Package view renders the admin pages.  Every page shares one layout
// (navigation, theme colors, flash messages); page templates only define
// the "content" block.
package view

import (
    "embed"
    "fmt"
    "html/template"
    "io"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-backoffice/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Page is the data handed to every template.  Data holds the page
// specific payload.
type Page struct {
    Title  string
    Active string
    Hotel  string
    Theme  map[string]string
    CSRF   string
    Role   string
    Flash  string
    Error  string
    Data   any
}

// IsAdmin reports whether the signed-in user may edit theme and settings.
func (p Page) IsAdmin() bool { return p.Role == model.RoleAdmin }

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
    pages map[string]*template.Template
}

var pageNames = []string{
    "login", "dashboard", "orders", "categories", "items",
    "rooms", "messages", "theme", "settings",
}

// New parses the layout together with each page.  Dates are displayed in
// loc.
func New(loc *time.Location) (*Renderer, error) {
    if loc == nil {
        loc = time.UTC
    }
    funcs := Funcs(loc)
    r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
    for _, name := range pageNames {
        t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
        if err != nil {
            return nil, fmt.Errorf("view %s: %w", name, err)
        }
        r.pages[name] = t
    }
    return r, nil
}

// Render executes the layout with the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
    t, ok := r.pages[name]
    if !ok {
        return fmt.Errorf("view %q not found", name)
    }
    return t.ExecuteTemplate(w, "layout", data)
}

var roomStatusLabels = map[string]string{
    "available":      "Disponible",
    "occupied":       "Occupée",
    "maintenance":    "Maintenance",
    "cleaning":       "Nettoyage",
    "out_of_service": "Hors service",
}

var housekeepingLabels = map[string]string{
    "cleaned":     "Propre",
    "pending":     "À faire",
    "in_progress": "En cours",
    "inspected":   "Inspectée",
}

var messageStatusLabels = map[string]string{
    model.MessageNew:      "Nouveau",
    model.MessageRead:     "Lu",
    model.MessageArchived: "Archivé",
}

func label(m map[string]string, s string) string {
    if l, ok := m[s]; ok {
        return l
    }
    return s
}

// Funcs returns the template helpers.
func Funcs(loc *time.Location) template.FuncMap {
    return template.FuncMap{
        "orderStatus":  model.OrderStatusLabel,
        "payment":      model.PaymentLabel,
        "roomStatus":   func(s string) string { return label(roomStatusLabels, s) },
        "housekeeping": func(s string) string { return label(housekeepingLabels, s) },
        "msgStatus":    func(s string) string { return label(messageStatusLabels, s) },
        "amount": func(d decimal.Decimal) string {
            return strings.Replace(d.StringFixed(2), ".", ",", 1)
        },
        "rate": func(d decimal.Decimal) string {
            return strings.Replace(d.String(), ".", ",", 1)
        },
        "datetime": func(v any) string {
            switch t := v.(type) {
            case time.Time:
                return t.In(loc).Format("02/01/2006 15:04")
            case *time.Time:
                if t != nil {
                    return t.In(loc).Format("02/01/2006 15:04")
                }
            }
            return ""
        },
        "str": func(p *string) string {
            if p == nil {
                return ""
            }
            return *p
        },
        "int": func(p *int) string {
            if p == nil {
                return ""
            }
            return fmt.Sprint(*p)
        },
        "dec": func(d *decimal.Decimal) string {
            if d == nil {
                return ""
            }
            return strings.Replace(d.String(), ".", ",", 1)
        },
        "trimPrefix": strings.TrimPrefix,
        "has":        model.Contains,
        "join":       strings.Join,
        "locales":    func() []string { return model.ExtraLocales },
    }
}
