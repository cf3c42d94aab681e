package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"spoolman/internal/cost/models"
	filament "spoolman/internal/filament/models"
	printer "spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
)

type PrinterReader interface {
	FindByID(ctx context.Context, id int64) (*printer.Printer, error)
}

type FilamentReader interface {
	FindByID(ctx context.Context, id int64) (*filament.Filament, error)
}

// InMemoryStore keeps cost calculations in a map keyed by id and resolves
// their printer and filament on every read. Ids that no longer resolve read
// as absent, as with ON DELETE SET NULL.
type InMemoryStore struct {
	mu        sync.RWMutex
	costs     map[int64]models.CostCalculation
	nextID    int64
	printers  PrinterReader
	filaments FilamentReader
}

func NewInMemory(printers PrinterReader, filaments FilamentReader) *InMemoryStore {
	return &InMemoryStore{
		costs:     make(map[int64]models.CostCalculation),
		printers:  printers,
		filaments: filaments,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, c *models.CostCalculation) error {
	s.mu.Lock()
	s.nextID++
	c.ID = s.nextID
	s.costs[c.ID] = stripped(c)
	s.mu.Unlock()
	return s.hydrate(ctx, c)
}

func (s *InMemoryStore) FindByID(ctx context.Context, id int64) (*models.CostCalculation, error) {
	s.mu.RLock()
	c, ok := s.costs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.hydrate(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InMemoryStore) Find(ctx context.Context, q *query.Query[models.CostCalculation]) (query.Result[models.CostCalculation], error) {
	s.mu.RLock()
	rows := make([]models.CostCalculation, 0, len(s.costs))
	for _, c := range s.costs {
		rows = append(rows, c)
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	for i := range rows {
		if err := s.hydrate(ctx, &rows[i]); err != nil {
			return query.Result[models.CostCalculation]{}, err
		}
	}
	return q.Apply(rows)
}

func (s *InMemoryStore) Update(ctx context.Context, c *models.CostCalculation) error {
	s.mu.Lock()
	if _, ok := s.costs[c.ID]; !ok {
		s.mu.Unlock()
		return sentinel.ErrNotFound
	}
	s.costs[c.ID] = stripped(c)
	s.mu.Unlock()
	return s.hydrate(ctx, c)
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.costs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.costs, id)
	return nil
}

// Count returns the number of stored calculations.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.costs)
}

func stripped(c *models.CostCalculation) models.CostCalculation {
	row := *c
	row.Printer = nil
	row.Filament = nil
	return row
}

func (s *InMemoryStore) hydrate(ctx context.Context, c *models.CostCalculation) error {
	c.Printer, c.Filament = nil, nil
	if c.PrinterID != nil {
		p, err := s.printers.FindByID(ctx, *c.PrinterID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			c.PrinterID = nil
		case err != nil:
			return err
		default:
			c.Printer = p
		}
	}
	if c.FilamentID != nil {
		f, err := s.filaments.FindByID(ctx, *c.FilamentID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			c.FilamentID = nil
		case err != nil:
			return err
		default:
			c.Filament = f
		}
	}
	return nil
}
