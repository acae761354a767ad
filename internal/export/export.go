package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

// OrderLister is satisfied by *repository.OrderRepo.
type OrderLister interface {
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)
}

// Result is the outcome of fetching orders for an export.  A degraded
// result has no orders and carries the error; it still renders as a valid,
// empty file so the download never fails.
type Result struct {
	Orders   []model.Order
	Degraded bool
	Err      error
}

// Exporter fetches and renders orders.
type Exporter struct {
	orders   OrderLister
	loc      *time.Location
	currency string
	now      func() time.Time
}

// NewExporter builds an exporter that displays times in loc and amounts
// with the currency symbol.
func NewExporter(orders OrderLister, loc *time.Location, currency string) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{orders: orders, loc: loc, currency: currency, now: time.Now}
}

// Fetch runs the export query.  It never returns an error: failures give a
// degraded Result.
func (e *Exporter) Fetch(ctx context.Context, f Filter) Result {
	orders, err := e.orders.List(ctx, f.OrderFilter)
	if err != nil {
		return Result{Orders: []model.Order{}, Degraded: true, Err: err}
	}
	return Result{Orders: orders}
}

// Filename returns commandes_room_service_<timestamp>.<ext>.
func (e *Exporter) Filename(ext string) string {
	return "commandes_room_service_" + e.now().In(e.loc).Format("2006-01-02_15-04-05") + "." + ext
}

func (e *Exporter) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(e.loc).Format("02/01/2006 15:04")
}

// formatAmount renders 12.5 as "12,50".
func formatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func (e *Exporter) formatMoney(d decimal.Decimal) string {
	if e.currency == "" {
		return formatAmount(d)
	}
	return formatAmount(d) + " " + e.currency
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// flatten collapses line breaks so one order stays on one row.
func flatten(s string) string {
	return lineBreaks.Replace(s)
}

// truncate shortens s to 47 runes plus "..." when it is longer than 50
// runes.
func truncate(s string) string {
	r := []rune(s)
	if len(r) <= 50 {
		return s
	}
	return string(r[:47]) + "..."
}

var sortLabels = map[string]string{
	"id":                "N° de commande",
	"room_number":       "Chambre",
	"delivery_datetime": "Livraison prévue",
	"created_at":        "Date de commande",
	"total_amount":      "Montant total",
	"status":            "Statut",
}

// frenchDate turns 2024-01-31 into 31/01/2024.
func frenchDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// Describe returns the human readable filter line of the report.
func Describe(f Filter) string {
	parts := []string{}
	if f.Status != "" {
		parts = append(parts, "Statut : "+model.OrderStatusLabel(f.Status))
	}
	if f.DeliveryDate != "" {
		parts = append(parts, "Livraison le "+frenchDate(f.DeliveryDate))
	}
	switch {
	case f.DateFrom != "" && f.DateTo != "":
		parts = append(parts, fmt.Sprintf("Commandes du %s au %s", frenchDate(f.DateFrom), frenchDate(f.DateTo)))
	case f.DateFrom != "":
		parts = append(parts, "Commandes depuis le "+frenchDate(f.DateFrom))
	case f.DateTo != "":
		parts = append(parts, "Commandes jusqu'au "+frenchDate(f.DateTo))
	}
	if len(parts) == 0 {
		return "Aucun filtre"
	}
	return strings.Join(parts, " · ")
}

// SortDescription names the sort column and direction in French.
func SortDescription(f Filter) string {
	dir := "décroissant"
	if f.Ascending {
		dir = "croissant"
	}
	return sortLabels[f.SortKey] + " (" + dir + ")"
}

// Stats are the figures printed above the report table.
type Stats struct {
	Count     int
	Total     decimal.Decimal
	Average   decimal.Decimal
	Delivered int
}

// ComputeStats sums orders.  The average basket is zero without orders.
func ComputeStats(orders []model.Order) Stats {
	st := Stats{Count: len(orders), Total: decimal.Zero, Average: decimal.Zero}
	for _, o := range orders {
		st.Total = st.Total.Add(o.TotalAmount)
		if o.Status == model.OrderDelivered {
			st.Delivered++
		}
	}
	if st.Count > 0 {
		st.Average = st.Total.Div(decimal.NewFromInt(int64(st.Count))).Round(2)
	}
	return st
}
