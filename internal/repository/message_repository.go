package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// MessageRepo encapsulates queries on guest_messages.
type MessageRepo struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

func NewMessageRepo(db *sql.DB, loc *time.Location) *MessageRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &MessageRepo{db: db, loc: loc, now: time.Now}
}

const messageColumns = "id, room_number, COALESCE(guest_name, ''), COALESCE(subject, ''), COALESCE(message, ''), status, created_at"

// List returns messages newest first, optionally restricted to one status.
func (r *MessageRepo) List(ctx context.Context, status string, limit int) ([]model.GuestMessage, error) {
	q := "SELECT " + messageColumns + " FROM guest_messages"
	args := []any{}
	if status != "" {
		q += " WHERE status = ?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	return r.query(ctx, q, args...)
}

// Recent returns the newest messages whatever their status.
func (r *MessageRepo) Recent(ctx context.Context, limit int) ([]model.GuestMessage, error) {
	return r.List(ctx, "", limit)
}

// UpdateStatus sets the status of one message.
func (r *MessageRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE guest_messages SET status = ? WHERE id = ?", status, id)
	return affectedOne(res, err)
}

// CountToday counts messages received during the current day in the hotel
// zone.
func (r *MessageRepo) CountToday(ctx context.Context) (int, error) {
	start, end := dayBounds(r.now(), r.loc)
	return r.count(ctx, "SELECT COUNT(*) FROM guest_messages WHERE created_at >= ? AND created_at < ?", start, end)
}

// CountTodayNew counts today's messages still in status new.
func (r *MessageRepo) CountTodayNew(ctx context.Context) (int, error) {
	start, end := dayBounds(r.now(), r.loc)
	return r.count(ctx, "SELECT COUNT(*) FROM guest_messages WHERE created_at >= ? AND created_at < ? AND status = 'new'", start, end)
}

// CountUnread counts every message in status new.
func (r *MessageRepo) CountUnread(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM guest_messages WHERE status = 'new'")
}

func (r *MessageRepo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (r *MessageRepo) query(ctx context.Context, q string, args ...any) ([]model.GuestMessage, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []model.GuestMessage{}
	for rows.Next() {
		var m model.GuestMessage
		if err := rows.Scan(&m.ID, &m.RoomNumber, &m.GuestName, &m.Subject, &m.Body, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
