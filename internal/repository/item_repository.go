package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// ItemRepo encapsulates queries on room_service_items.
type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = "id, category_code, name, translations, price, position, is_active, created_at"

// List returns items ordered for display.  An empty categoryCode lists
// every item.
func (r *ItemRepo) List(ctx context.Context, categoryCode string) ([]model.MenuItem, error) {
	q := "SELECT " + itemColumns + " FROM room_service_items"
	args := []any{}
	if categoryCode != "" {
		q += " WHERE category_code = ?"
		args = append(args, categoryCode)
	}
	q += " ORDER BY category_code, position, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []model.MenuItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetByID fetches one item.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM room_service_items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &it, nil
}

// Create inserts an item and sets its ID.
func (r *ItemRepo) Create(ctx context.Context, it *model.MenuItem) error {
	tr, err := json.Marshal(it.Translations)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO room_service_items (category_code, name, translations, price, position, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		it.CategoryCode, it.Name, string(tr), it.Price, it.Position, it.IsActive)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// Update rewrites the mutable columns of an item.
func (r *ItemRepo) Update(ctx context.Context, it *model.MenuItem) error {
	tr, err := json.Marshal(it.Translations)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_service_items
		 SET category_code = ?, name = ?, translations = ?, price = ?, position = ?, is_active = ?
		 WHERE id = ?`,
		it.CategoryCode, it.Name, string(tr), it.Price, it.Position, it.IsActive, it.ID)
	return affectedOne(res, err)
}

// ToggleActive flips is_active.
func (r *ItemRepo) ToggleActive(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE room_service_items SET is_active = NOT is_active WHERE id = ?", id)
	return affectedOne(res, err)
}

// Delete removes an item.  Past orders keep their own copy of the item
// name and price, so nothing else references the row.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM room_service_items WHERE id = ?", id)
	return affectedOne(res, err)
}

// NextPosition returns the position placing a new item last in its category.
func (r *ItemRepo) NextPosition(ctx context.Context, categoryCode string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM room_service_items WHERE category_code = ?", categoryCode).Scan(&n)
	return n, classify(err)
}

func scanItem(s rowScanner) (model.MenuItem, error) {
	var (
		it model.MenuItem
		tr sql.NullString
	)
	if err := s.Scan(&it.ID, &it.CategoryCode, &it.Name, &tr, &it.Price, &it.Position, &it.IsActive, &it.CreatedAt); err != nil {
		return it, err
	}
	it.Translations = map[string]string{}
	if tr.Valid && tr.String != "" {
		if err := json.Unmarshal([]byte(tr.String), &it.Translations); err != nil {
			return it, err
		}
	}
	if _, ok := it.Translations[model.BaseLocale]; !ok {
		it.Translations[model.BaseLocale] = it.Name
	}
	return it, nil
}
