package handler

import (
    "context"
    "errors"
    "fmt"
    "html/template"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/export"
    "github.com/iliyamo/hotel-backoffice/internal/middleware"
    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/queue"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// OrderStore is satisfied by *repository.OrderRepo.
type OrderStore interface {
    List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)
    GetByID(ctx context.Context, id uint64) (*model.Order, []model.OrderItem, error)
    UpdateStatus(ctx context.Context, id uint64, status string) (string, error)
}

// orderPageSize caps the order list page; exports are not capped.
const orderPageSize = 200

var sortOptions = []view.SortOption{
    {Key: "delivery_datetime", Label: "Date de livraison"},
    {Key: "created_at", Label: "Date de commande"},
    {Key: "id", Label: "Numéro"},
    {Key: "room_number", Label: "Chambre"},
    {Key: "total_amount", Label: "Montant"},
    {Key: "status", Label: "Statut"},
}

// OrderHandler lists, updates and exports room-service orders.
type OrderHandler struct {
    Base
    Orders    OrderStore
    Exporter  *export.Exporter
    Publisher queue.Publisher
}

func NewOrderHandler(base Base, orders OrderStore, exp *export.Exporter, pub queue.Publisher) *OrderHandler {
    if pub == nil {
        pub = queue.NopPublisher{}
    }
    return &OrderHandler{Base: base, Orders: orders, Exporter: exp, Publisher: pub}
}

// List renders GET /admin/orders with the same filters as the export.
// ?id= opens the detail of one order above the list.
func (h *OrderHandler) List(c echo.Context) error {
    return h.show(c, "", "")
}

func (h *OrderHandler) show(c echo.Context, flash, errMsg string) error {
    ctx := c.Request().Context()
    f := export.ParseFilter(c.QueryParams())
    f.Limit = orderPageSize

    q := f.Query()
    q.Del("format")
    data := view.OrdersData{
        Filter:      f,
        Statuses:    model.OrderStatuses,
        Sorts:       sortOptions,
        ExportQuery: template.URL(q.Encode()),
    }
    res := h.Exporter.Fetch(ctx, f)
    if res.Degraded {
        c.Logger().Warnf("order list degraded request_id=%s: %v", requestID(c), res.Err)
    }
    data.Orders, data.Degraded = res.Orders, res.Degraded

    if id := queryUint(c, "id"); id != 0 {
        o, items, err := h.Orders.GetByID(ctx, id)
        switch {
        case err == nil:
            data.Detail = &view.OrderDetail{Order: *o, Items: items}
        case errors.Is(err, repository.ErrNotFound):
            if errMsg == "" {
                errMsg = "Commande introuvable."
            }
        default:
            c.Logger().Warnf("order %d detail: %v", id, err)
        }
    }

    p := h.page(c, "Commandes", "orders", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "orders", p)
}

// Post handles POST /admin/orders (action=update_status).  A successful
// change publishes an order.status_changed event; a broker failure is
// logged and does not undo the change.
func (h *OrderHandler) Post(c echo.Context) error {
    if c.FormValue("action") != "update_status" {
        return h.show(c, "", "Action inconnue.")
    }
    id := formUint(c, "order_id")
    status := c.FormValue("status")
    if id == 0 || !model.IsOrderStatus(status) {
        return h.show(c, "", "Statut de commande invalide.")
    }

    ctx := c.Request().Context()
    prev, err := h.Orders.UpdateStatus(ctx, id, status)
    if errors.Is(err, repository.ErrNotFound) {
        return h.show(c, "", "Commande introuvable.")
    }
    if err != nil {
        return h.show(c, "", userMessage(c, err))
    }

    if prev != status {
        o, _, err := h.Orders.GetByID(ctx, id)
        room := ""
        if err == nil {
            room = o.RoomNumber
        }
        ev := queue.OrderStatusChangedEvent{
            OrderID:    id,
            RoomNumber: room,
            From:       prev,
            To:         status,
            StaffID:    middleware.UserID(c),
            RequestID:  requestID(c),
            ChangedAt:  time.Now().UTC(),
        }
        if err := h.Publisher.PublishOrderStatusChanged(ctx, ev); err != nil {
            c.Logger().Warnf("publish order %d status: %v", id, err)
        }
    }
    return h.show(c, fmt.Sprintf("Commande #%d : %s.", id, model.OrderStatusLabel(status)), "")
}

// Export serves GET /export-orders as CSV or as a print-ready HTML report.
// A failed query still produces a file: an empty CSV or a report carrying
// a notice.
func (h *OrderHandler) Export(c echo.Context) error {
    ctx := c.Request().Context()
    f := export.ParseFilter(c.QueryParams())
    res := h.Exporter.Fetch(ctx, f)
    if res.Degraded {
        c.Logger().Warnf("export degraded request_id=%s: %v", requestID(c), res.Err)
    }

    w := c.Response()
    if f.Format == export.FormatPDF {
        w.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
        w.Header().Set(echo.HeaderContentDisposition, "inline; filename="+h.Exporter.Filename("html"))
        w.WriteHeader(http.StatusOK)
        return h.Exporter.WriteHTML(w, h.Settings.HotelInfo(ctx).Name, f, res)
    }
    w.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
    w.Header().Set(echo.HeaderContentDisposition, "attachment; filename="+h.Exporter.Filename("csv"))
    w.WriteHeader(http.StatusOK)
    return h.Exporter.WriteCSV(w, res.Orders)
}

