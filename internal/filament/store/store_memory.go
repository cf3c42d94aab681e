package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"spoolman/internal/filament/models"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
)

// InMemoryVendorStore keeps vendors in a map keyed by id.
type InMemoryVendorStore struct {
	mu      sync.RWMutex
	vendors map[int64]models.Vendor
	nextID  int64
}

func NewInMemoryVendors() *InMemoryVendorStore {
	return &InMemoryVendorStore{vendors: make(map[int64]models.Vendor)}
}

func (s *InMemoryVendorStore) Create(_ context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	s.vendors[v.ID] = *v
	return nil
}

func (s *InMemoryVendorStore) FindByID(_ context.Context, id int64) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (s *InMemoryVendorStore) Find(_ context.Context, q *query.Query[models.Vendor]) (query.Result[models.Vendor], error) {
	s.mu.RLock()
	rows := make([]models.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		rows = append(rows, v)
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return q.Apply(rows)
}

func (s *InMemoryVendorStore) Update(_ context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.vendors[v.ID] = *v
	return nil
}

func (s *InMemoryVendorStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.vendors, id)
	return nil
}

// VendorReader looks up the vendor of a filament.
type VendorReader interface {
	FindByID(ctx context.Context, id int64) (*models.Vendor, error)
}

// InMemoryFilamentStore keeps filaments in a map keyed by id and resolves
// their vendor on every read. A vendor id that no longer resolves reads as
// no vendor, as with ON DELETE SET NULL.
type InMemoryFilamentStore struct {
	mu        sync.RWMutex
	filaments map[int64]models.Filament
	nextID    int64
	vendors   VendorReader
}

func NewInMemoryFilaments(vendors VendorReader) *InMemoryFilamentStore {
	return &InMemoryFilamentStore{filaments: make(map[int64]models.Filament), vendors: vendors}
}

func (s *InMemoryFilamentStore) Create(ctx context.Context, f *models.Filament) error {
	s.mu.Lock()
	s.nextID++
	f.ID = s.nextID
	stored := *f
	stored.Vendor = nil
	s.filaments[f.ID] = stored
	s.mu.Unlock()
	return s.hydrate(ctx, f)
}

func (s *InMemoryFilamentStore) FindByID(ctx context.Context, id int64) (*models.Filament, error) {
	s.mu.RLock()
	f, ok := s.filaments[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.hydrate(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *InMemoryFilamentStore) Find(ctx context.Context, q *query.Query[models.Filament]) (query.Result[models.Filament], error) {
	s.mu.RLock()
	rows := make([]models.Filament, 0, len(s.filaments))
	for _, f := range s.filaments {
		rows = append(rows, f)
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	for i := range rows {
		if err := s.hydrate(ctx, &rows[i]); err != nil {
			return query.Result[models.Filament]{}, err
		}
	}
	return q.Apply(rows)
}

func (s *InMemoryFilamentStore) Update(ctx context.Context, f *models.Filament) error {
	s.mu.Lock()
	if _, ok := s.filaments[f.ID]; !ok {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	stored := *f
	stored.Vendor = nil
	s.filaments[f.ID] = stored
	s.mu.Unlock()
	return s.hydrate(ctx, f)
}

func (s *InMemoryFilamentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filaments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.filaments, id)
	return nil
}

func (s *InMemoryFilamentStore) hydrate(ctx context.Context, f *models.Filament) error {
	f.Vendor = nil
	if f.VendorID == nil {
		return nil
	}
	v, err := s.vendors.FindByID(ctx, *f.VendorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		f.VendorID = nil
		return nil
	}
	if err != nil {
		return err
	}
	f.Vendor = v
	return nil
}
