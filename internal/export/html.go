package export

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

//go:embed report.html
var reportHTML string

var reportTmpl = template.Must(template.New("report").Parse(reportHTML))

type reportRow struct {
	ID        uint64
	Room      string
	Guest     string
	Items     string
	ItemsFull string
	Amount    string
	Status    string
	Payment   string
	Delivery  string
	Created   string
}

type reportData struct {
	Hotel       string
	GeneratedAt string
	FilterLine  string
	SortLine    string
	Degraded    bool
	Stats       Stats
	Total       string
	Average     string
	Rows        []reportRow
}

// WriteHTML renders the print-ready report.  The page opens the browser's
// print dialog as soon as it loads.
func (e *Exporter) WriteHTML(w io.Writer, hotel string, f Filter, res Result) error {
	st := ComputeStats(res.Orders)
	data := reportData{
		Hotel:       hotel,
		GeneratedAt: e.now().In(e.loc).Format("02/01/2006 à 15:04"),
		FilterLine:  Describe(f),
		SortLine:    SortDescription(f),
		Degraded:    res.Degraded,
		Stats:       st,
		Total:       e.formatMoney(st.Total),
		Average:     e.formatMoney(st.Average),
		Rows:        make([]reportRow, 0, len(res.Orders)),
	}
	for _, o := range res.Orders {
		created := o.CreatedAt
		data.Rows = append(data.Rows, reportRow{
			ID:        o.ID,
			Room:      o.RoomNumber,
			Guest:     o.GuestName,
			Items:     truncate(o.ItemsSummary),
			ItemsFull: o.ItemsSummary,
			Amount:    e.formatMoney(o.TotalAmount),
			Status:    model.OrderStatusLabel(o.Status),
			Payment:   model.PaymentLabel(o.PaymentMethod),
			Delivery:  e.formatTime(o.DeliveryAt),
			Created:   e.formatTime(&created),
		})
	}
	return reportTmpl.Execute(w, data)
}
