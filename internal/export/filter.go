// Package export renders room-service orders as a spreadsheet-friendly CSV
// file or as a print-ready HTML report that staff save as PDF from the
// browser.
package export

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

// Output formats.  "pdf" is an HTML document printed by the browser.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Filter is a normalized export request.
type Filter struct {
	Format string
	repository.OrderFilter
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseFilter reads the export query string.  Every value outside its
// allowed set falls back to the default instead of failing: csv for the
// format, delivery_datetime for the sort column and DESC for the order.
// Unknown statuses and malformed dates are dropped.
func ParseFilter(q url.Values) Filter {
	f := Filter{Format: FormatCSV}
	if strings.ToLower(strings.TrimSpace(q.Get("format"))) == FormatPDF {
		f.Format = FormatPDF
	}

	f.SortKey = repository.DefaultOrderSort
	if s := strings.TrimSpace(q.Get("sort")); s != "" {
		if _, ok := repository.OrderSortColumns[s]; ok {
			f.SortKey = s
		}
	}
	f.Ascending = strings.EqualFold(strings.TrimSpace(q.Get("order")), "ASC")

	if s := strings.TrimSpace(q.Get("status")); model.IsOrderStatus(s) {
		f.Status = s
	}
	f.DeliveryDate = cleanDate(q.Get("delivery_date"))
	f.DateFrom = cleanDate(q.Get("date_from"))
	f.DateTo = cleanDate(q.Get("date_to"))
	return f
}

func cleanDate(s string) string {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// Direction returns "ASC" or "DESC".
func (f Filter) Direction() string {
	if f.Ascending {
		return "ASC"
	}
	return "DESC"
}

// Query encodes f back into query parameters, e.g. for export links on the
// order list.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("format", f.Format)
	q.Set("sort", f.SortKey)
	q.Set("order", f.Direction())
	for k, v := range map[string]string{
		"status":        f.Status,
		"delivery_date": f.DeliveryDate,
		"date_from":     f.DateFrom,
		"date_to":       f.DateTo,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
