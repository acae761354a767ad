package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SettingRepo reads and writes the key/value `settings` table.  Callers go
// through service.Settings, which knows the defaults of every key.
type SettingRepo struct {
	db *sql.DB
}

func NewSettingRepo(db *sql.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

// Get returns the stored value and whether the key exists.
func (r *SettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		"SELECT setting_value FROM settings WHERE setting_key = ? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify(err)
	}
	return v, true, nil
}

// GetMany returns the stored values for keys.  Missing keys are absent from
// the map.
func (r *SettingRepo) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	q := "SELECT setting_key, setting_value FROM settings WHERE setting_key IN (" + placeholders(len(keys)) + ")"
	rows, err := r.db.QueryContext(ctx, q, stringArgs(keys)...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set upserts a value.
func (r *SettingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return classify(err)
}

// SetMany upserts several values in one transaction.
func (r *SettingRepo) SetMany(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, k := range sortedKeys(values) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = CURRENT_TIMESTAMP`,
			k, values[k]); err != nil {
			return classify(err)
		}
	}
	return nil
}

// Delete removes a key so that its default applies again.
func (r *SettingRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE setting_key = ?", key)
	return classify(err)
}

// DeleteMany removes several keys.
func (r *SettingRepo) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM settings WHERE setting_key IN ("+placeholders(len(keys))+")", stringArgs(keys)...)
	return classify(err)
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
