package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// OrderSortColumns maps the sort keys accepted from requests to SQL
// columns.  Only values of this map are ever interpolated into a query.
var OrderSortColumns = map[string]string{
	"id":                "o.id",
	"room_number":       "o.room_number",
	"delivery_datetime": "o.delivery_datetime",
	"created_at":        "o.created_at",
	"total_amount":      "o.total_amount",
	"status":            "o.status",
}

// DefaultOrderSort is used for any sort key missing from OrderSortColumns.
const DefaultOrderSort = "delivery_datetime"

// OrderFilter selects and orders orders for listing and export.  Empty
// strings mean "no filter".  Dates are YYYY-MM-DD days in the hotel zone;
// DateFrom and DateTo are inclusive.  Malformed dates are ignored.
type OrderFilter struct {
	Status       string
	DeliveryDate string
	DateFrom     string
	DateTo       string
	SortKey      string
	Ascending    bool
	Limit        int
}

// OrderRepo encapsulates queries on room_service_orders and their items.
type OrderRepo struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// NewOrderRepo returns a repo whose day boundaries follow loc.  The
// connection must run with time_zone '+00:00' (see database.DSN).
func NewOrderRepo(db *sql.DB, loc *time.Location) *OrderRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderRepo{db: db, loc: loc, now: time.Now}
}

const orderSelect = `SELECT
		o.id,
		o.room_number,
		COALESCE(o.guest_name, ''),
		COALESCE(o.phone, ''),
		o.status,
		COALESCE(o.payment_method, ''),
		o.delivery_datetime,
		o.created_at,
		o.total_amount,
		COALESCE(o.notes, ''),
		COALESCE(GROUP_CONCAT(CONCAT(oi.item_name, ' x', oi.quantity) ORDER BY oi.id SEPARATOR ', '), '') AS items
	FROM room_service_orders o
	LEFT JOIN room_service_order_items oi ON oi.order_id = o.id`

// buildOrderQuery turns a filter into SQL and its arguments.
func buildOrderQuery(f OrderFilter, loc *time.Location) (string, []any) {
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, f.Status)
	}
	if start, end, ok := parseDay(f.DeliveryDate, loc); ok {
		where = append(where, "o.delivery_datetime >= ? AND o.delivery_datetime < ?")
		args = append(args, start, end)
	}
	if start, _, ok := parseDay(f.DateFrom, loc); ok {
		where = append(where, "o.created_at >= ?")
		args = append(args, start)
	}
	if _, end, ok := parseDay(f.DateTo, loc); ok {
		where = append(where, "o.created_at < ?")
		args = append(args, end)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	col, ok := OrderSortColumns[f.SortKey]
	if !ok {
		col = OrderSortColumns[DefaultOrderSort]
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	q := orderSelect + `
	WHERE ` + cond + `
	GROUP BY o.id
	ORDER BY ` + col + ` ` + dir
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

// List returns the orders matching f with their item summaries.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	q, args := buildOrderQuery(f, r.loc)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one order and its lines.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, []model.OrderItem, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+`
	WHERE o.id = ?
	GROUP BY o.id`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, classify(err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, item_name, quantity, unit_price FROM room_service_order_items WHERE order_id = ? ORDER BY id", id)
	if err != nil {
		return nil, nil, classify(err)
	}
	defer rows.Close()
	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

// UpdateStatus sets a new status and returns the previous one.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) (string, error) {
	var prev string
	err := r.db.QueryRowContext(ctx, "SELECT status FROM room_service_orders WHERE id = ?", id).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", classify(err)
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE room_service_orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id); err != nil {
		return "", classify(err)
	}
	return prev, nil
}

// CountCreatedToday counts orders created during the current day in the
// hotel zone.
func (r *OrderRepo) CountCreatedToday(ctx context.Context) (int, error) {
	start, end := dayBounds(r.now(), r.loc)
	return r.count(ctx, "SELECT COUNT(*) FROM room_service_orders WHERE created_at >= ? AND created_at < ?", start, end)
}

// StatusCountsToday groups today's orders by status.
func (r *OrderRepo) StatusCountsToday(ctx context.Context) (map[string]int, error) {
	start, end := dayBounds(r.now(), r.loc)
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM room_service_orders WHERE created_at >= ? AND created_at < ? GROUP BY status", start, end)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

const openDeliveryCond = "delivery_datetime >= NOW() AND status NOT IN ('delivered', 'cancelled')"

// CountUpcoming counts orders still to be delivered in the future.
func (r *OrderRepo) CountUpcoming(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM room_service_orders WHERE "+openDeliveryCond)
}

// CountByStatus counts all orders in a status, whatever their date.
func (r *OrderRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM room_service_orders WHERE status = ?", status)
}

// Urgent returns the open orders with the soonest delivery time.
func (r *OrderRepo) Urgent(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_number, status, delivery_datetime
		 FROM room_service_orders
		 WHERE `+openDeliveryCond+`
		 ORDER BY delivery_datetime ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var (
			o  model.Order
			dt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.RoomNumber, &o.Status, &dt); err != nil {
			return nil, err
		}
		if dt.Valid {
			t := dt.Time
			o.DeliveryAt = &t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func scanOrder(s rowScanner) (model.Order, error) {
	var (
		o  model.Order
		dt sql.NullTime
	)
	err := s.Scan(&o.ID, &o.RoomNumber, &o.GuestName, &o.Phone, &o.Status, &o.PaymentMethod,
		&dt, &o.CreatedAt, &o.TotalAmount, &o.Notes, &o.ItemsSummary)
	if err != nil {
		return o, err
	}
	if dt.Valid {
		t := dt.Time
		o.DeliveryAt = &t
	}
	return o, nil
}
