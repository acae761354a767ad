package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

// RoomStore is satisfied by *repository.RoomRepo.
type RoomStore interface {
	NumberExists(ctx context.Context, number string, excludeID uint64) (bool, error)
	Create(ctx context.Context, rm *model.Room) error
	Update(ctx context.Context, rm *model.Room) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
	UpdateHousekeeping(ctx context.Context, id uint64, status string) error
	SoftDelete(ctx context.Context, id uint64) error
	HardDelete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	List(ctx context.Context, f repository.RoomFilter) ([]*model.Room, error)
	Statistics(ctx context.Context) (repository.RoomStats, error)
}

const (
	MsgDuplicateRoom       = "Ce numéro de chambre existe déjà."
	MsgRoomStatus          = "Statut de chambre invalide."
	MsgHousekeepingStatus  = "Statut de ménage invalide."
	MsgRoomNotFound        = "Chambre introuvable."
	MsgSurfaceArea         = "La surface doit être un nombre positif."
	defaultRoomStatus      = "available"
	defaultHousekeepStatus = "cleaned"
)

// RoomInput is what the room form submits.
type RoomInput struct {
	RoomNumber  string `validate:"required,max=10" label:"numéro de chambre"`
	Floor       *int   `validate:"omitempty,gte=-5,lte=200" label:"étage"`
	RoomType    string `validate:"required,oneof=single double twin suite family deluxe" label:"type de chambre"`
	Capacity    int    `validate:"gte=1,lte=20" label:"capacité"`
	BedCount    int    `validate:"gte=1,lte=10" label:"nombre de lits"`
	SurfaceArea string
	Amenities   []string
	Notes       string `validate:"max=2000" label:"notes"`
	// Status and HousekeepingStatus are only read on creation; empty
	// values select the defaults.
	Status             string
	HousekeepingStatus string
	IsActive           bool
}

// Rooms manages the room inventory.
type Rooms struct {
	store RoomStore
}

func NewRooms(store RoomStore) *Rooms {
	return &Rooms{store: store}
}

func (s *Rooms) normalize(ctx context.Context, in RoomInput, id uint64) (*model.Room, error) {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.RoomType = strings.TrimSpace(in.RoomType)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := Validate(in); err != nil {
		return nil, err
	}

	rm := &model.Room{
		ID:         id,
		RoomNumber: in.RoomNumber,
		Floor:      in.Floor,
		RoomType:   in.RoomType,
		Capacity:   in.Capacity,
		BedCount:   in.BedCount,
		Amenities:  NormalizeAmenities(in.Amenities),
		Notes:      in.Notes,
		IsActive:   in.IsActive,
	}
	if raw := strings.TrimSpace(in.SurfaceArea); raw != "" {
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil || !d.IsPositive() {
			return nil, invalid("surface_area", MsgSurfaceArea)
		}
		d = d.Round(2)
		rm.SurfaceArea = &d
	}

	exists, err := s.store.NumberExists(ctx, rm.RoomNumber, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ValidationError{Field: "room_number", Message: MsgDuplicateRoom, Err: repository.ErrDuplicate}
	}
	return rm, nil
}

// NormalizeAmenities trims and lowercases keys, drops empty ones and
// removes duplicates while keeping the submitted order.  Keys outside model.KnownAmenities
// are kept.
func NormalizeAmenities(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// CreateRoom validates and inserts a room.  The room number must not be
// used by any other room, active or not.
func (s *Rooms) CreateRoom(ctx context.Context, in RoomInput) (uint64, error) {
	rm, err := s.normalize(ctx, in, 0)
	if err != nil {
		return 0, err
	}
	rm.Status = defaultRoomStatus
	if in.Status != "" {
		if !model.Contains(model.RoomStatuses, in.Status) {
			return 0, invalid("status", MsgRoomStatus)
		}
		rm.Status = in.Status
	}
	rm.HousekeepingStatus = defaultHousekeepStatus
	if in.HousekeepingStatus != "" {
		if !model.Contains(model.HousekeepingStatuses, in.HousekeepingStatus) {
			return 0, invalid("housekeeping_status", MsgHousekeepingStatus)
		}
		rm.HousekeepingStatus = in.HousekeepingStatus
	}
	rm.IsActive = true

	if err := s.store.Create(ctx, rm); err != nil {
		if repository.IsDuplicate(err) {
			return 0, &ValidationError{Field: "room_number", Message: MsgDuplicateRoom, Err: repository.ErrDuplicate}
		}
		return 0, err
	}
	return rm.ID, nil
}

// UpdateRoom rewrites the descriptive fields of a room.  Status fields
// have their own operations and are left untouched.
func (s *Rooms) UpdateRoom(ctx context.Context, id uint64, in RoomInput) error {
	rm, err := s.normalize(ctx, in, id)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, rm); err != nil {
		if repository.IsDuplicate(err) {
			return &ValidationError{Field: "room_number", Message: MsgDuplicateRoom, Err: repository.ErrDuplicate}
		}
		return err
	}
	return nil
}

// UpdateRoomStatus sets the occupancy status.  Any known status may follow
// any other.
func (s *Rooms) UpdateRoomStatus(ctx context.Context, id uint64, status string) error {
	if !model.Contains(model.RoomStatuses, status) {
		return invalid("status", MsgRoomStatus)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// UpdateRoomHousekeepingStatus sets the housekeeping status.  Any known
// status may follow any other.
func (s *Rooms) UpdateRoomHousekeepingStatus(ctx context.Context, id uint64, status string) error {
	if !model.Contains(model.HousekeepingStatuses, status) {
		return invalid("housekeeping_status", MsgHousekeepingStatus)
	}
	return s.store.UpdateHousekeeping(ctx, id, status)
}

// DeleteRoom hides a room, or removes it for good when hard is set.
func (s *Rooms) DeleteRoom(ctx context.Context, id uint64, hard bool) error {
	if hard {
		return s.store.HardDelete(ctx, id)
	}
	return s.store.SoftDelete(ctx, id)
}

// GetRoom returns one room, active or not.
func (s *Rooms) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return s.store.GetByID(ctx, id)
}

// GetRooms lists rooms.  Filter values outside the known sets are ignored
// rather than producing an empty list.
func (s *Rooms) GetRooms(ctx context.Context, f repository.RoomFilter) ([]*model.Room, error) {
	if !model.Contains(model.RoomStatuses, f.Status) {
		f.Status = ""
	}
	if !model.Contains(model.HousekeepingStatuses, f.HousekeepingStatus) {
		f.HousekeepingStatus = ""
	}
	if !model.Contains(model.RoomTypes, f.RoomType) {
		f.RoomType = ""
	}
	return s.store.List(ctx, f)
}

// GetRoomStatistics counts active rooms by status and housekeeping status.
func (s *Rooms) GetRoomStatistics(ctx context.Context) (repository.RoomStats, error) {
	return s.store.Statistics(ctx)
}
