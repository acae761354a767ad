package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a dish or product offered on the room-service menu.  Its
// category is referenced by code, never by id, so that items survive a
// category being recreated.
type MenuItem struct {
	ID           uint64            // room_service_items.id
	CategoryCode string            // room_service_items.category_code
	Name         string            // room_service_items.name
	Translations map[string]string // room_service_items.translations (JSON)
	Price        decimal.Decimal   // room_service_items.price, VAT included
	Position     int               // room_service_items.position
	IsActive     bool              // room_service_items.is_active
	CreatedAt    time.Time         // room_service_items.created_at
}
