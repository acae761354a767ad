package service

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	reads  int
}

func newMemSettings() *memSettings { return &memSettings{values: map[string]string{}} }

func (m *memSettings) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
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
	return m.err
}

func (m *memSettings) SetMany(_ context.Context, vals map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for k, v := range vals {
		m.values[k] = v
	}
	return nil
}

func (m *memSettings) Delete(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, k)
	return m.err
}

func (m *memSettings) DeleteMany(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return m.err
}

// memCatalog keeps categories and items in memory with the same
// semantics as the MySQL repositories.
type memCatalog struct {
	cats   map[string]*model.Category
	items  map[uint64]*model.MenuItem
	nextID uint64
	calls  []string
}

func newMemCatalog() *memCatalog {
	m := &memCatalog{cats: map[string]*model.Category{}, items: map[uint64]*model.MenuItem{}}
	m.cats[model.GeneralCategory] = &model.Category{ID: 1, Code: model.GeneralCategory, Name: "Général", Position: 1, IsActive: true}
	m.nextID = 1
	return m
}

func (m *memCatalog) addItem(code, name string) {
	m.nextID++
	m.items[m.nextID] = &model.MenuItem{ID: m.nextID, CategoryCode: code, Name: name}
}

func (m *memCatalog) countItems(code string) int {
	n := 0
	for _, it := range m.items {
		if it.CategoryCode == code {
			n++
		}
	}
	return n
}

func (m *memCatalog) Create(_ context.Context, c *model.Category) error {
	m.calls = append(m.calls, "create")
	if _, ok := m.cats[c.Code]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.cats[c.Code] = &cp
	return nil
}

func (m *memCatalog) NextPosition(context.Context) (int, error) {
	max := 0
	for _, c := range m.cats {
		if c.Position > max {
			max = c.Position
		}
	}
	return max + 1, nil
}

func (m *memCatalog) Update(_ context.Context, code string, c *model.Category) error {
	m.calls = append(m.calls, "update")
	cur, ok := m.cats[code]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *c
	cp.ID, cp.Code = cur.ID, code
	m.cats[code] = &cp
	return nil
}

func (m *memCatalog) ToggleActive(_ context.Context, code string) error {
	c, ok := m.cats[code]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = !c.IsActive
	return nil
}

func (m *memCatalog) GetByCode(_ context.Context, code string) (*repository.CategoryRow, error) {
	c, ok := m.cats[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.CategoryRow{Category: *c, ItemCount: m.countItems(code)}, nil
}

func (m *memCatalog) List(context.Context) ([]*repository.CategoryRow, error) {
	out := []*repository.CategoryRow{}
	for code, c := range m.cats {
		out = append(out, &repository.CategoryRow{Category: *c, ItemCount: m.countItems(code)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memCatalog) DeleteAndReassign(_ context.Context, code, target string) (int64, error) {
	m.calls = append(m.calls, "delete")
	c, ok := m.cats[code]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if _, ok := m.cats[target]; !ok {
		return 0, repository.ErrConflict
	}
	var moved int64
	for _, it := range m.items {
		if it.CategoryCode == code {
			it.CategoryCode = target
			moved++
		}
	}
	delete(m.cats, c.Code)
	return moved, nil
}

type memItems struct{ cat *memCatalog }

func (m memItems) List(_ context.Context, code string) ([]model.MenuItem, error) {
	out := []model.MenuItem{}
	for _, it := range m.cat.items {
		if code == "" || it.CategoryCode == code {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memItems) GetByID(_ context.Context, id uint64) (*model.MenuItem, error) {
	it, ok := m.cat.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m memItems) Create(_ context.Context, it *model.MenuItem) error {
	m.cat.nextID++
	it.ID = m.cat.nextID
	cp := *it
	m.cat.items[it.ID] = &cp
	return nil
}

func (m memItems) Update(_ context.Context, it *model.MenuItem) error {
	if _, ok := m.cat.items[it.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *it
	m.cat.items[it.ID] = &cp
	return nil
}

func (m memItems) ToggleActive(_ context.Context, id uint64) error {
	it, ok := m.cat.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.IsActive = !it.IsActive
	return nil
}

func (m memItems) Delete(_ context.Context, id uint64) error {
	if _, ok := m.cat.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.cat.items, id)
	return nil
}

func (m memItems) NextPosition(context.Context, string) (int, error) { return 1, nil }
