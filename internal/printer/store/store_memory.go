package store

import (
	"context"
	"sort"
	"sync"

	"spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
)

// InMemoryStore keeps printers in a map keyed by id.
type InMemoryStore struct {
	mu       sync.RWMutex
	printers map[int64]models.Printer
	nextID   int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{printers: make(map[int64]models.Printer)}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Printer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.printers[p.ID] = *p
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Printer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.printers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) Find(_ context.Context, q *query.Query[models.Printer]) (query.Result[models.Printer], error) {
	return q.Apply(s.snapshot())
}

// snapshot returns every printer ordered by id.
func (s *InMemoryStore) snapshot() []models.Printer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]models.Printer, 0, len(s.printers))
	for _, p := range s.printers {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Printer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.printers[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.printers[p.ID] = *p
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.printers[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.printers, id)
	return nil
}
