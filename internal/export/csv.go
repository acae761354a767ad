package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// bom lets spreadsheet software detect UTF-8.
var bom = []byte{0xEF, 0xBB, 0xBF}

// CSVHeader is the fixed first row of the CSV export.
var CSVHeader = []string{
	"ID", "Chambre", "Client", "Téléphone", "Articles", "Montant total",
	"Statut", "Paiement", "Livraison prévue", "Date de commande", "Notes",
}

// WriteCSV writes the BOM, the header and one row per order, separated by
// semicolons.
func (e *Exporter) WriteCSV(w io.Writer, orders []model.Order) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, o := range orders {
		created := o.CreatedAt
		row := []string{
			strconv.FormatUint(o.ID, 10),
			o.RoomNumber,
			o.GuestName,
			o.Phone,
			o.ItemsSummary,
			formatAmount(o.TotalAmount),
			model.OrderStatusLabel(o.Status),
			model.PaymentLabel(o.PaymentMethod),
			e.formatTime(o.DeliveryAt),
			e.formatTime(&created),
			flatten(o.Notes),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
