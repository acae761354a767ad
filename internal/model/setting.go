package model

import "time"

// Setting is one row of the key/value settings table.
type Setting struct {
	Key       string    // settings.setting_key
	Value     string    // settings.setting_value
	UpdatedAt time.Time // settings.updated_at
}
