package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// RoomFilter narrows the room list.  Empty fields do not filter.  Inactive
// (soft-deleted) rooms are hidden unless ShowInactive is set.
type RoomFilter struct {
	Status             string
	HousekeepingStatus string
	RoomType           string
	Floor              *int
	Search             string
	ShowInactive       bool
}

// RoomStats feeds the summary tiles above the room list.
type RoomStats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	ByHousekeeping map[string]int `json:"by_housekeeping"`
}

// RoomRepo encapsulates queries on the rooms table.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, room_number, floor, room_type, capacity, bed_count, surface_area, status, housekeeping_status,
	amenities, COALESCE(notes, ''), is_active, created_at, updated_at`

// NumberExists reports whether another room (any id but excludeID, active
// or not) already uses number.  Pass 0 when creating.
func (r *RoomRepo) NumberExists(ctx context.Context, number string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rooms WHERE room_number = ? AND id <> ?", number, excludeID).Scan(&n)
	if err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// Create inserts a room and sets its ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	am, err := json.Marshal(nonNil(rm.Amenities))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_number, floor, room_type, capacity, bed_count, surface_area, status, housekeeping_status, amenities, notes, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.RoomNumber, rm.Floor, rm.RoomType, rm.Capacity, rm.BedCount, nullDecimal(rm.SurfaceArea),
		rm.Status, rm.HousekeepingStatus, string(am), rm.Notes, rm.IsActive)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// Update rewrites the descriptive columns of a room.  Status and
// housekeeping status have their own single-field updates.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	am, err := json.Marshal(nonNil(rm.Amenities))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms
		 SET room_number = ?, floor = ?, room_type = ?, capacity = ?, bed_count = ?, surface_area = ?,
		     amenities = ?, notes = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		rm.RoomNumber, rm.Floor, rm.RoomType, rm.Capacity, rm.BedCount, nullDecimal(rm.SurfaceArea),
		string(am), rm.Notes, rm.IsActive, rm.ID)
	return affectedOne(res, err)
}

// UpdateStatus sets rooms.status.
func (r *RoomRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	return affectedOne(res, err)
}

// UpdateHousekeeping sets rooms.housekeeping_status.
func (r *RoomRepo) UpdateHousekeeping(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET housekeeping_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	return affectedOne(res, err)
}

// SoftDelete hides a room by clearing is_active.
func (r *RoomRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	return affectedOne(res, err)
}

// HardDelete removes the row permanently.
func (r *RoomRepo) HardDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	return affectedOne(res, err)
}

// GetByID fetches a room whatever its is_active flag.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return rm, nil
}

// List returns rooms matching f ordered by floor then number.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]*model.Room, error) {
	where := []string{}
	args := []any{}
	if !f.ShowInactive {
		where = append(where, "is_active = 1")
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.HousekeepingStatus != "" {
		where = append(where, "housekeeping_status = ?")
		args = append(args, f.HousekeepingStatus)
	}
	if f.RoomType != "" {
		where = append(where, "room_type = ?")
		args = append(args, f.RoomType)
	}
	if f.Floor != nil {
		where = append(where, "floor = ?")
		args = append(args, *f.Floor)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "room_number LIKE ?")
		args = append(args, escapeLike(s)+"%")
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE "+cond+" ORDER BY floor IS NULL, floor, room_number", args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []*model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Statistics counts active rooms in total, by status and by housekeeping
// status.  Every known status appears in the maps, zero when unused.
func (r *RoomRepo) Statistics(ctx context.Context) (RoomStats, error) {
	st := RoomStats{ByStatus: map[string]int{}, ByHousekeeping: map[string]int{}}
	for _, s := range model.RoomStatuses {
		st.ByStatus[s] = 0
	}
	for _, s := range model.HousekeepingStatuses {
		st.ByHousekeeping[s] = 0
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT status, housekeeping_status, COUNT(*) FROM rooms WHERE is_active = 1 GROUP BY status, housekeeping_status")
	if err != nil {
		return st, classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status, hk string
			n          int
		)
		if err := rows.Scan(&status, &hk, &n); err != nil {
			return st, err
		}
		st.Total += n
		st.ByStatus[status] += n
		st.ByHousekeeping[hk] += n
	}
	return st, rows.Err()
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		rm      model.Room
		floor   sql.NullInt64
		surface decimal.NullDecimal
		am      sql.NullString
	)
	if err := s.Scan(&rm.ID, &rm.RoomNumber, &floor, &rm.RoomType, &rm.Capacity, &rm.BedCount, &surface,
		&rm.Status, &rm.HousekeepingStatus, &am, &rm.Notes, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	if floor.Valid {
		f := int(floor.Int64)
		rm.Floor = &f
	}
	if surface.Valid {
		d := surface.Decimal
		rm.SurfaceArea = &d
	}
	rm.Amenities = []string{}
	if am.Valid && am.String != "" {
		if err := json.Unmarshal([]byte(am.String), &rm.Amenities); err != nil {
			return nil, err
		}
	}
	return &rm, nil
}

// affectedOne converts a zero-row write into ErrNotFound.  The connection
// uses clientFoundRows, so zero rows means no row matched.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
