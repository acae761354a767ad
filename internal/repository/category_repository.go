package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

// CategoryRow is a category together with the number of menu items that
// currently reference it.
type CategoryRow struct {
	model.Category
	ItemCount int
}

// CategoryRepo encapsulates queries on room_service_categories and the
// category_code column of room_service_items.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = `c.id, c.code, c.name, c.translations, c.time_start, c.time_end, c.position, c.is_active, c.created_at, c.updated_at`

// Create inserts a category and sets its ID.  A taken code yields
// ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	tr, err := json.Marshal(c.Translations)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO room_service_categories (code, name, translations, time_start, time_end, position, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Name, string(tr), c.TimeStart, c.TimeEnd, c.Position, c.IsActive)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// NextPosition returns the position placing a new category last.
func (r *CategoryRepo) NextPosition(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), 0) + 1 FROM room_service_categories").Scan(&n)
	return n, classify(err)
}

// Update rewrites every mutable column of the category identified by code.
// The code itself never changes.
func (r *CategoryRepo) Update(ctx context.Context, code string, c *model.Category) error {
	tr, err := json.Marshal(c.Translations)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_service_categories
		 SET name = ?, translations = ?, time_start = ?, time_end = ?, position = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE code = ?`,
		c.Name, string(tr), c.TimeStart, c.TimeEnd, c.Position, c.IsActive, code)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleActive flips is_active.
func (r *CategoryRepo) ToggleActive(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE room_service_categories SET is_active = NOT is_active, updated_at = CURRENT_TIMESTAMP WHERE code = ?", code)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByCode fetches one category with its item count.
func (r *CategoryRepo) GetByCode(ctx context.Context, code string) (*CategoryRow, error) {
	q := `SELECT ` + categoryColumns + `, COUNT(i.id)
	      FROM room_service_categories c
	      LEFT JOIN room_service_items i ON i.category_code = c.code
	      WHERE c.code = ?
	      GROUP BY c.id`
	row, err := scanCategory(r.db.QueryRowContext(ctx, q, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return row, nil
}

// List returns every category ordered for display, with item counts.
func (r *CategoryRepo) List(ctx context.Context) ([]*CategoryRow, error) {
	q := `SELECT ` + categoryColumns + `, COUNT(i.id)
	      FROM room_service_categories c
	      LEFT JOIN room_service_items i ON i.category_code = c.code
	      GROUP BY c.id
	      ORDER BY c.position, c.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []*CategoryRow
	for rows.Next() {
		row, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ItemCount returns how many items reference code.
func (r *CategoryRepo) ItemCount(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM room_service_items WHERE category_code = ?", code).Scan(&n)
	return n, classify(err)
}

// DeleteAndReassign moves every item of code to target and then removes
// the category, inside one transaction.  It returns the number of items
// moved.  ErrNotFound means code does not exist; ErrConflict means target
// does not exist.
func (r *CategoryRepo) DeleteAndReassign(ctx context.Context, code, target string) (moved int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var id uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM room_service_categories WHERE code = ?", code).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return 0, err
	}
	var targetID uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM room_service_categories WHERE code = ?", target).Scan(&targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrConflict
		}
		return 0, err
	}

	res, err := tx.ExecContext(ctx, "UPDATE room_service_items SET category_code = ? WHERE category_code = ?", target, code)
	if err != nil {
		return 0, err
	}
	moved, _ = res.RowsAffected()

	if _, err = tx.ExecContext(ctx, "DELETE FROM room_service_categories WHERE id = ?", id); err != nil {
		return 0, err
	}
	return moved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(s rowScanner) (*CategoryRow, error) {
	var (
		row       CategoryRow
		tr        sql.NullString
		timeStart sql.NullString
		timeEnd   sql.NullString
	)
	if err := s.Scan(&row.ID, &row.Code, &row.Name, &tr, &timeStart, &timeEnd,
		&row.Position, &row.IsActive, &row.CreatedAt, &row.UpdatedAt, &row.ItemCount); err != nil {
		return nil, err
	}
	row.Translations = map[string]string{}
	if tr.Valid && tr.String != "" {
		if err := json.Unmarshal([]byte(tr.String), &row.Translations); err != nil {
			return nil, err
		}
	}
	if _, ok := row.Translations[model.BaseLocale]; !ok {
		row.Translations[model.BaseLocale] = row.Name
	}
	row.TimeStart = clockPtr(timeStart)
	row.TimeEnd = clockPtr(timeEnd)
	return &row, nil
}

// clockPtr turns a MySQL TIME value ("07:30:00") into "07:30".
func clockPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	if len(s) > 5 {
		s = s[:5]
	}
	return &s
}
