package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var paris = time.FixedZone("CET", 3600)

func TestBuildOrderQueryDefaults(t *testing.T) {
	q, args := buildOrderQuery(OrderFilter{}, paris)
	require.Contains(t, q, "WHERE 1=1")
	require.Contains(t, q, "GROUP BY o.id")
	require.Contains(t, q, "ORDER BY o.delivery_datetime DESC")
	require.Empty(t, args)
}

func TestBuildOrderQueryUnknownSortFallsBack(t *testing.T) {
	for _, key := range []string{"", "price", "id; DROP TABLE users", "o.id", "DELIVERY_DATETIME"} {
		q, _ := buildOrderQuery(OrderFilter{SortKey: key, Ascending: true}, paris)
		require.Contains(t, q, "ORDER BY o.delivery_datetime ASC", key)
		require.NotContains(t, q, "DROP")
	}
}

func TestBuildOrderQueryFilters(t *testing.T) {
	q, args := buildOrderQuery(OrderFilter{
		Status:       "pending",
		DeliveryDate: "2024-01-15",
		DateFrom:     "2024-01-01",
		DateTo:       "2024-01-31",
		SortKey:      "total_amount",
		Limit:        50,
	}, paris)
	require.Contains(t, q, "o.status = ? AND o.delivery_datetime >= ? AND o.delivery_datetime < ? AND o.created_at >= ? AND o.created_at < ?")
	require.Contains(t, q, "ORDER BY o.total_amount DESC LIMIT ?")
	require.Equal(t, []any{
		"pending",
		time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
		50,
	}, args)
}

func TestBuildOrderQueryIgnoresMalformedDates(t *testing.T) {
	q, args := buildOrderQuery(OrderFilter{DeliveryDate: "15/01/2024", DateFrom: "soon"}, paris)
	require.Contains(t, q, "WHERE 1=1")
	require.Empty(t, args)
}

func TestTodayCountsUseHotelDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 00:30 in Paris is still the previous day in UTC.
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	start := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 23, 0, 0, 0, time.UTC)

	orders := NewOrderRepo(db, paris)
	orders.now = func() time.Time { return now }
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_service_orders WHERE created_at >= ? AND created_at < ?")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(4))
	n, err := orders.CountCreatedToday(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, n)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= ? AND created_at < ? GROUP BY status")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).AddRow("pending", 3).AddRow("delivered", 1))
	counts, err := orders.StatusCountsToday(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]int{"pending": 3, "delivered": 1}, counts)

	messages := NewMessageRepo(db, paris)
	messages.now = func() time.Time { return now }
	mock.ExpectQuery(regexp.QuoteMeta("FROM guest_messages WHERE created_at >= ? AND created_at < ? AND status = 'new'")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	n, err = messages.CountTodayNew(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	delivery := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "room_number", "guest_name", "phone", "status", "payment_method", "delivery_datetime", "created_at", "total_amount", "notes", "items"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.status = ? AND o.created_at >= ? AND o.created_at < ?")).
		WithArgs("pending", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, "204", "Mme Durand", "0600000000", "pending", "room_charge", delivery, created, "27.50", "", "Club sandwich x1, Eau x2").
			AddRow(2, "101", "", "", "pending", "card", nil, created, "8.00", "sans glace", "Café x1"))

	orders, err := NewOrderRepo(db, nil).List(context.Background(), OrderFilter{Status: "pending", DateFrom: "2024-01-01", DateTo: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("27.5")))
	require.Equal(t, delivery, *orders[0].DeliveryAt)
	require.Equal(t, "Club sandwich x1, Eau x2", orders[0].ItemsSummary)
	require.Nil(t, orders[1].DeliveryAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatusReturnsPrevious(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM room_service_orders").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec("UPDATE room_service_orders SET status = ?").WithArgs("preparing", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	prev, err := NewOrderRepo(db, nil).UpdateStatus(context.Background(), 9, "preparing")
	require.NoError(t, err)
	require.Equal(t, "pending", prev)
}

func TestOrderUpdateStatusUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM room_service_orders").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	_, err = NewOrderRepo(db, nil).UpdateStatus(context.Background(), 9, "preparing")
	require.ErrorIs(t, err, ErrNotFound)
}
