package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

type memRooms struct {
	rooms  map[uint64]*model.Room
	nextID uint64
	last   repository.RoomFilter
}

func newMemRooms() *memRooms { return &memRooms{rooms: map[uint64]*model.Room{}} }

func (m *memRooms) NumberExists(_ context.Context, number string, excludeID uint64) (bool, error) {
	for id, r := range m.rooms {
		if r.RoomNumber == number && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRooms) Create(_ context.Context, rm *model.Room) error {
	m.nextID++
	rm.ID = m.nextID
	cp := *rm
	m.rooms[rm.ID] = &cp
	return nil
}

func (m *memRooms) Update(_ context.Context, rm *model.Room) error {
	cur, ok := m.rooms[rm.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *rm
	cp.Status, cp.HousekeepingStatus = cur.Status, cur.HousekeepingStatus
	m.rooms[rm.ID] = &cp
	return nil
}

func (m *memRooms) set(id uint64, f func(*model.Room)) error {
	r, ok := m.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	f(r)
	return nil
}

func (m *memRooms) UpdateStatus(_ context.Context, id uint64, s string) error {
	return m.set(id, func(r *model.Room) { r.Status = s })
}

func (m *memRooms) UpdateHousekeeping(_ context.Context, id uint64, s string) error {
	return m.set(id, func(r *model.Room) { r.HousekeepingStatus = s })
}

func (m *memRooms) SoftDelete(_ context.Context, id uint64) error {
	return m.set(id, func(r *model.Room) { r.IsActive = false })
}

func (m *memRooms) HardDelete(_ context.Context, id uint64) error {
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *memRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (m *memRooms) List(_ context.Context, f repository.RoomFilter) ([]*model.Room, error) {
	m.last = f
	out := []*model.Room{}
	for _, r := range m.rooms {
		if r.IsActive || f.ShowInactive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRooms) Statistics(context.Context) (repository.RoomStats, error) {
	st := repository.RoomStats{ByStatus: map[string]int{}, ByHousekeeping: map[string]int{}}
	for _, r := range m.rooms {
		if r.IsActive {
			st.Total++
			st.ByStatus[r.Status]++
			st.ByHousekeeping[r.HousekeepingStatus]++
		}
	}
	return st, nil
}

func validRoom(number string) RoomInput {
	return RoomInput{RoomNumber: number, RoomType: "double", Capacity: 2, BedCount: 1}
}

func TestCreateRoomDefaults(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)

	in := validRoom(" 101 ")
	in.SurfaceArea = "18,5"
	in.Amenities = []string{"wifi", " tv ", "", "wifi", "jacuzzi"}
	id, err := s.CreateRoom(context.Background(), in)
	require.NoError(t, err)

	rm := store.rooms[id]
	require.Equal(t, "101", rm.RoomNumber)
	require.Equal(t, "available", rm.Status)
	require.Equal(t, "cleaned", rm.HousekeepingStatus)
	require.True(t, rm.IsActive)
	require.Equal(t, "18.5", rm.SurfaceArea.String())
	require.Equal(t, []string{"wifi", "tv", "jacuzzi"}, rm.Amenities)
}

func TestNormalizeAmenitiesFoldsCase(t *testing.T) {
	require.Equal(t, []string{"wifi", "minibar", "jacuzzi"},
		NormalizeAmenities([]string{"WiFi", "wifi", " Minibar", "JACUZZI", "  "}))
	require.Equal(t, []string{}, NormalizeAmenities(nil))
}

func TestCreateRoomValidation(t *testing.T) {
	s := NewRooms(newMemRooms())
	ctx := context.Background()

	cases := map[string]func(*RoomInput){
		"missing number": func(in *RoomInput) { in.RoomNumber = "  " },
		"unknown type":   func(in *RoomInput) { in.RoomType = "penthouse" },
		"zero capacity":  func(in *RoomInput) { in.Capacity = 0 },
		"zero beds":      func(in *RoomInput) { in.BedCount = 0 },
		"bad surface":    func(in *RoomInput) { in.SurfaceArea = "-3" },
		"bad status":     func(in *RoomInput) { in.Status = "haunted" },
		"bad housekeep":  func(in *RoomInput) { in.HousekeepingStatus = "dusty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRoom("201")
			mutate(&in)
			_, err := s.CreateRoom(ctx, in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.NotEmpty(t, ve.Message)
		})
	}
}

func TestRoomNumberUniqueness(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)
	ctx := context.Background()

	a, err := s.CreateRoom(ctx, validRoom("101"))
	require.NoError(t, err)
	b, err := s.CreateRoom(ctx, validRoom("102"))
	require.NoError(t, err)

	// Soft-deleted rooms still own their number.
	require.NoError(t, s.DeleteRoom(ctx, a, false))
	_, err = s.CreateRoom(ctx, validRoom("101"))
	require.EqualError(t, err, MsgDuplicateRoom)
	require.ErrorIs(t, err, repository.ErrDuplicate)

	require.EqualError(t, s.UpdateRoom(ctx, b, validRoom("101")), MsgDuplicateRoom)

	// Keeping its own number is fine.
	in := validRoom("102")
	in.Notes = "vue mer"
	in.IsActive = true
	require.NoError(t, s.UpdateRoom(ctx, b, in))
	require.Equal(t, "vue mer", store.rooms[b].Notes)
}

func TestRoomStatusTransitionsAreUnrestricted(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)
	ctx := context.Background()
	id, err := s.CreateRoom(ctx, validRoom("301"))
	require.NoError(t, err)

	for _, from := range model.RoomStatuses {
		for _, to := range model.RoomStatuses {
			require.NoError(t, s.UpdateRoomStatus(ctx, id, from))
			require.NoError(t, s.UpdateRoomStatus(ctx, id, to))
			require.Equal(t, to, store.rooms[id].Status)
		}
	}
	require.EqualError(t, s.UpdateRoomStatus(ctx, id, "cleaned"), MsgRoomStatus)

	for _, hk := range model.HousekeepingStatuses {
		require.NoError(t, s.UpdateRoomHousekeepingStatus(ctx, id, hk))
	}
	require.EqualError(t, s.UpdateRoomHousekeepingStatus(ctx, id, "available"), MsgHousekeepingStatus)
	require.ErrorIs(t, s.UpdateRoomStatus(ctx, 999, "available"), repository.ErrNotFound)
}

func TestDeleteRoomSoftAndHard(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)
	ctx := context.Background()
	id, err := s.CreateRoom(ctx, validRoom("401"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteRoom(ctx, id, false))
	require.False(t, store.rooms[id].IsActive)

	active, err := s.GetRooms(ctx, repository.RoomFilter{})
	require.NoError(t, err)
	require.Empty(t, active)
	all, err := s.GetRooms(ctx, repository.RoomFilter{ShowInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, s.DeleteRoom(ctx, id, true))
	require.NotContains(t, store.rooms, id)
}

func TestGetRoomsDropsUnknownFilters(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)
	_, err := s.GetRooms(context.Background(), repository.RoomFilter{Status: "nope", HousekeepingStatus: "pending", RoomType: "castle"})
	require.NoError(t, err)
	require.Equal(t, "", store.last.Status)
	require.Equal(t, "pending", store.last.HousekeepingStatus)
	require.Equal(t, "", store.last.RoomType)
}

func TestRoomStatisticsSumMatchesTotal(t *testing.T) {
	store := newMemRooms()
	s := NewRooms(store)
	ctx := context.Background()
	for i, st := range []string{"available", "occupied", "occupied", "maintenance"} {
		in := validRoom(string(rune('A' + i)))
		in.Status = st
		_, err := s.CreateRoom(ctx, in)
		require.NoError(t, err)
	}

	stats, err := s.GetRoomStatistics(ctx)
	require.NoError(t, err)
	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	require.Equal(t, stats.Total, sum)
	require.Equal(t, 4, stats.Total)
}
