package model

import "time"

// GeneralCategory is the protected default category.  Items are reassigned
// to it when their category is deleted and it can never be deleted itself.
const GeneralCategory = "general"

// BaseLocale is the locale of Category.Name.  It is always present in
// Category.Translations.
const BaseLocale = "fr"

// ExtraLocales are the optional translation locales offered in the admin.
var ExtraLocales = []string{"en", "es", "de", "it"}

// Category groups room-service menu items.  Code is the stable identifier
// referenced by room_service_items.category_code and cannot change once the
// category exists.
//
// Fields:
//  ID           – primary key identifier.
//  Code         – unique code made of [a-z0-9_].
//  Name         – display name in BaseLocale.
//  Translations – locale → name; BaseLocale always included.
//  TimeStart    – availability start "HH:MM" (nil together with TimeEnd).
//  TimeEnd      – availability end "HH:MM".
//  Position     – display order, ascending.
//  IsActive     – whether the category is offered to guests.
type Category struct {
	ID           uint64            // room_service_categories.id
	Code         string            // room_service_categories.code
	Name         string            // room_service_categories.name
	Translations map[string]string // room_service_categories.translations (JSON)
	TimeStart    *string           // room_service_categories.time_start (nullable)
	TimeEnd      *string           // room_service_categories.time_end (nullable)
	Position     int               // room_service_categories.position
	IsActive     bool              // room_service_categories.is_active
	CreatedAt    time.Time         // room_service_categories.created_at
	UpdatedAt    time.Time         // room_service_categories.updated_at
}
