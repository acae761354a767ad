package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/queue"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/service"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

type memSettings struct {
    mu     sync.Mutex
    values map[string]string
}

func (m *memSettings) GetMany(_ context.Context, keys []string) (map[string]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := map[string]string{}
    for _, k := range keys {
        if v, ok := m.values[k]; ok {
            out[k] = v
        }
    }
    return out, nil
}

func (m *memSettings) Set(_ context.Context, k, v string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.values[k] = v
    return nil
}

func (m *memSettings) SetMany(_ context.Context, vals map[string]string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for k, v := range vals {
        m.values[k] = v
    }
    return nil
}

func (m *memSettings) Delete(_ context.Context, k string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.values, k)
    return nil
}

func (m *memSettings) DeleteMany(_ context.Context, keys []string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, k := range keys {
        delete(m.values, k)
    }
    return nil
}

type testValidator struct{}

func (testValidator) Validate(i interface{}) error { return service.Validate(i) }

// newTestEcho returns an echo instance able to render pages and a Base
// over in-memory settings.
func newTestEcho(t *testing.T) (*echo.Echo, Base, *memSettings) {
    t.Helper()
    r, err := view.New(time.UTC)
    require.NoError(t, err)
    e := echo.New()
    e.Renderer = r
    e.Validator = testValidator{}
    store := &memSettings{values: map[string]string{service.KeyHotelName: "Hôtel du Lac"}}
    return e, Base{Settings: service.NewSettings(store, nil, "10")}, store
}

// asStaff marks every request as coming from a signed-in admin.
func asStaff(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        c.Set("user_id", uint64(7))
        c.Set("role", model.RoleAdmin)
        c.Set("session_hash", "hash-7")
        return next(c)
    }
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
    return rec
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

type fakeOrders struct {
    orders  []model.Order
    listErr error
    prev    string
    updated map[uint64]string
    last    repository.OrderFilter
}

func (f *fakeOrders) List(_ context.Context, flt repository.OrderFilter) ([]model.Order, error) {
    f.last = flt
    return f.orders, f.listErr
}

func (f *fakeOrders) GetByID(_ context.Context, id uint64) (*model.Order, []model.OrderItem, error) {
    for _, o := range f.orders {
        if o.ID == id {
            o := o
            return &o, []model.OrderItem{{OrderID: id, ItemName: "Club sandwich", Quantity: 1}}, nil
        }
    }
    return nil, nil, repository.ErrNotFound
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint64, status string) (string, error) {
    if _, _, err := f.GetByID(context.Background(), id); err != nil {
        return "", err
    }
    if f.updated == nil {
        f.updated = map[uint64]string{}
    }
    f.updated[id] = status
    return f.prev, nil
}

type recordingPublisher struct {
    events []queue.OrderStatusChangedEvent
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, ev queue.OrderStatusChangedEvent) error {
    p.events = append(p.events, ev)
    return nil
}

type fakeCategories struct {
    rows []*repository.CategoryRow
}

func (f *fakeCategories) Create(context.Context, *model.Category) error         { return nil }
func (f *fakeCategories) NextPosition(context.Context) (int, error)             { return 1, nil }
func (f *fakeCategories) Update(context.Context, string, *model.Category) error { return nil }
func (f *fakeCategories) ToggleActive(_ context.Context, code string) error {
    for _, r := range f.rows {
        if r.Code == code {
            r.IsActive = !r.IsActive
            return nil
        }
    }
    return repository.ErrNotFound
}
func (f *fakeCategories) GetByCode(_ context.Context, code string) (*repository.CategoryRow, error) {
    for _, r := range f.rows {
        if r.Code == code {
            return r, nil
        }
    }
    return nil, repository.ErrNotFound
}
func (f *fakeCategories) List(context.Context) ([]*repository.CategoryRow, error) { return f.rows, nil }
func (f *fakeCategories) DeleteAndReassign(context.Context, string, string) (int64, error) {
    panic("storage must not be touched")
}

type fakeItems struct{}

func (fakeItems) List(context.Context, string) ([]model.MenuItem, error)       { return nil, nil }
func (fakeItems) GetByID(context.Context, uint64) (*model.MenuItem, error)     { return nil, repository.ErrNotFound }
func (fakeItems) Create(context.Context, *model.MenuItem) error                { return nil }
func (fakeItems) Update(context.Context, *model.MenuItem) error                { return nil }
func (fakeItems) ToggleActive(context.Context, uint64) error                   { return repository.ErrNotFound }
func (fakeItems) Delete(context.Context, uint64) error                         { return repository.ErrNotFound }
func (fakeItems) NextPosition(context.Context, string) (int, error)            { return 1, nil }

type fakeRooms struct {
    rooms []*model.Room
    last  repository.RoomFilter
}

func (f *fakeRooms) NumberExists(context.Context, string, uint64) (bool, error) { return false, nil }
func (f *fakeRooms) Create(_ context.Context, rm *model.Room) error {
    rm.ID = uint64(len(f.rooms) + 1)
    f.rooms = append(f.rooms, rm)
    return nil
}
func (f *fakeRooms) Update(context.Context, *model.Room) error { return nil }
func (f *fakeRooms) UpdateStatus(_ context.Context, id uint64, status string) error {
    for _, r := range f.rooms {
        if r.ID == id {
            r.Status = status
            return nil
        }
    }
    return repository.ErrNotFound
}
func (f *fakeRooms) UpdateHousekeeping(context.Context, uint64, string) error { return nil }
func (f *fakeRooms) SoftDelete(context.Context, uint64) error                 { return nil }
func (f *fakeRooms) HardDelete(context.Context, uint64) error                 { return nil }
func (f *fakeRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
    for _, r := range f.rooms {
        if r.ID == id {
            return r, nil
        }
    }
    return nil, repository.ErrNotFound
}
func (f *fakeRooms) List(_ context.Context, flt repository.RoomFilter) ([]*model.Room, error) {
    f.last = flt
    return f.rooms, nil
}
func (f *fakeRooms) Statistics(context.Context) (repository.RoomStats, error) {
    return repository.RoomStats{Total: len(f.rooms), ByStatus: map[string]int{"available": len(f.rooms)}}, nil
}
