package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room types offered in the inventory form.
var RoomTypes = []string{"single", "double", "twin", "suite", "family", "deluxe"}

// Room occupancy statuses.
var RoomStatuses = []string{"available", "occupied", "maintenance", "cleaning", "out_of_service"}

// Housekeeping statuses.  They evolve independently from RoomStatuses.
var HousekeepingStatuses = []string{"cleaned", "pending", "in_progress", "inspected"}

// KnownAmenities are the amenity keys the admin form offers.  Rooms may
// carry other keys too.
var KnownAmenities = []string{
	"wifi", "tv", "minibar", "safe", "air_conditioning", "balcony",
	"bathtub", "shower", "hairdryer", "desk", "iron", "coffee_maker",
}

// Contains reports whether v is in list.
func Contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Room is a physical hotel room.
type Room struct {
	ID                 uint64           `json:"id"`                  // rooms.id
	RoomNumber         string           `json:"room_number"`         // rooms.room_number (unique)
	Floor              *int             `json:"floor"`               // rooms.floor (nullable)
	RoomType           string           `json:"room_type"`           // rooms.room_type
	Capacity           int              `json:"capacity"`            // rooms.capacity
	BedCount           int              `json:"bed_count"`           // rooms.bed_count
	SurfaceArea        *decimal.Decimal `json:"surface_area"`        // rooms.surface_area (nullable, m²)
	Status             string           `json:"status"`              // rooms.status
	HousekeepingStatus string           `json:"housekeeping_status"` // rooms.housekeeping_status
	Amenities          []string         `json:"amenities"`           // rooms.amenities (JSON array)
	Notes              string           `json:"notes"`               // rooms.notes
	IsActive           bool             `json:"is_active"`           // rooms.is_active
	CreatedAt          time.Time        `json:"created_at"`          // rooms.created_at
	UpdatedAt          time.Time        `json:"updated_at"`          // rooms.updated_at
}
