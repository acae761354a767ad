package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/service"
)

// Snapshotter is satisfied by *service.Dashboard.
type Snapshotter interface {
    Snapshot(ctx context.Context) service.Snapshot
}

// DashboardHandler serves the admin home page and its polling endpoint.
type DashboardHandler struct {
    Base
    Dashboard Snapshotter
}

func NewDashboardHandler(base Base, d Snapshotter) *DashboardHandler {
    return &DashboardHandler{Base: base, Dashboard: d}
}

func (h *DashboardHandler) snapshot(c echo.Context) service.Snapshot {
    snap := h.Dashboard.Snapshot(c.Request().Context())
    if snap.State == service.StateDegraded {
        c.Logger().Warnf("dashboard degraded request_id=%s: %v", requestID(c), snap.Err)
    }
    return snap
}

// Page renders GET /admin.
func (h *DashboardHandler) Page(c echo.Context) error {
    return render(c, "dashboard", h.page(c, "Tableau de bord", "dashboard", h.snapshot(c)))
}

// Updates serves GET /api/dashboard-updates.  It always answers 200:
// disabled and degraded states are part of the payload.
func (h *DashboardHandler) Updates(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.snapshot(c)})
}
