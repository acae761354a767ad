package handler

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/service"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// SettingsHandler serves the admin-only theme and hotel settings pages.
type SettingsHandler struct {
    Base
}

func NewSettingsHandler(base Base) *SettingsHandler {
    return &SettingsHandler{Base: base}
}

// ThemePage renders GET /admin/theme.
func (h *SettingsHandler) ThemePage(c echo.Context) error {
    return h.showTheme(c, "", "")
}

func (h *SettingsHandler) showTheme(c echo.Context, flash, errMsg string) error {
    data := view.ThemeData{Keys: service.ThemeKeys, Defaults: service.ThemeDefaults()}
    p := h.page(c, "Thème", "theme", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "theme", p)
}

// PostTheme handles POST /admin/theme with action save_theme or
// reset_theme.
func (h *SettingsHandler) PostTheme(c echo.Context) error {
    ctx := c.Request().Context()
    switch c.FormValue("action") {
    case "save_theme":
        colors := make(map[string]string, len(service.ThemeKeys))
        for _, k := range service.ThemeKeys {
            colors[k] = c.FormValue(k)
        }
        if err := h.Settings.SaveTheme(ctx, colors); err != nil {
            return h.showTheme(c, "", userMessage(c, err))
        }
        return h.showTheme(c, "Thème enregistré.", "")
    case "reset_theme":
        if err := h.Settings.ResetTheme(ctx); err != nil {
            return h.showTheme(c, "", userMessage(c, err))
        }
        return h.showTheme(c, "Couleurs par défaut rétablies.", "")
    }
    return h.showTheme(c, "", "Action inconnue.")
}

// SettingsPage renders GET /admin/settings.
func (h *SettingsHandler) SettingsPage(c echo.Context) error {
    return h.showSettings(c, nil, "", "")
}

func (h *SettingsHandler) showSettings(c echo.Context, form *service.HotelInfo, flash, errMsg string) error {
    ctx := c.Request().Context()
    data := view.SettingsData{Info: h.Settings.HotelInfo(ctx), DefaultVAT: h.Settings.DefaultVATRate(ctx)}
    if form != nil {
        data.Info = *form
    }
    p := h.page(c, "Paramètres", "settings", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "settings", p)
}

// PostSettings handles POST /admin/settings with action save_hotel_info
// or save_vat.
func (h *SettingsHandler) PostSettings(c echo.Context) error {
    ctx := c.Request().Context()
    switch c.FormValue("action") {
    case "save_hotel_info":
        info := service.HotelInfo{
            Name:        c.FormValue("hotel_name"),
            Phone:       c.FormValue("hotel_phone"),
            Email:       c.FormValue("hotel_email"),
            Address:     c.FormValue("hotel_address"),
            WelcomeText: c.FormValue("hotel_welcome_text"),
        }
        if err := h.Settings.SaveHotelInfo(ctx, info); err != nil {
            return h.showSettings(c, &info, "", userMessage(c, err))
        }
        return h.showSettings(c, nil, "Informations de l'hôtel enregistrées.", "")
    case "save_vat":
        rate, err := service.ParseVATRate(c.FormValue("vat_rate_default"))
        if err == nil {
            err = h.Settings.SetDefaultVATRate(ctx, rate)
        }
        if err != nil {
            return h.showSettings(c, nil, "", userMessage(c, err))
        }
        return h.showSettings(c, nil, "Taux de TVA par défaut enregistré.", "")
    }
    return h.showSettings(c, nil, "", "Action inconnue.")
}
