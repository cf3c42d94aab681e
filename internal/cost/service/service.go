// Package service implements cost calculation CRUD. Writes naming a printer
// or filament check that it exists in the same unit of work as the write.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spoolman/internal/cost/models"
	filament "spoolman/internal/filament/models"
	"spoolman/internal/platform/metrics"
	"spoolman/internal/platform/tracing"
	printer "spoolman/internal/printer/models"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

//go:generate mockgen -source=service.go -destination=mocks/cost-mocks.go -package=mocks Store,PrinterLookup,FilamentLookup
type Store interface {
	Create(ctx context.Context, c *models.CostCalculation) error
	FindByID(ctx context.Context, id int64) (*models.CostCalculation, error)
	Find(ctx context.Context, q *query.Query[models.CostCalculation]) (query.Result[models.CostCalculation], error)
	Update(ctx context.Context, c *models.CostCalculation) error
	Delete(ctx context.Context, id int64) error
}

type PrinterLookup interface {
	FindByID(ctx context.Context, id int64) (*printer.Printer, error)
}

type FilamentLookup interface {
	FindByID(ctx context.Context, id int64) (*filament.Filament, error)
}

type Emitter interface {
	Emit(ctx context.Context, typ pubsub.EventType, resource string, id int64, snapshot any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, pubsub.EventType, string, int64, any) {}

type Service struct {
	costs     Store
	printers  PrinterLookup
	filaments FilamentLookup
	emitter   Emitter
	tx        tx.Runner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
}

type Option func(*Service)

// WithEmitter sets where change events go. Nil keeps the no-op emitter.
func WithEmitter(e Emitter) Option {
	return func(s *Service) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithTx sets the unit-of-work runner.
func WithTx(r tx.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.tx = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics counts entity changes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock used for created timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// New returns a cost service. printers and filaments resolve relation ids.
func New(costs Store, printers PrinterLookup, filaments FilamentLookup, opts ...Option) *Service {
	s := &Service{
		costs:     costs,
		printers:  printers,
		filaments: filaments,
		emitter:   noopEmitter{},
		tx:        &tx.Local{},
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (_ *models.CostCalculation, err error) {
	ctx, span := tracing.Start(ctx, "cost.Create")
	defer tracing.End(span, &err)

	c := req.Calculation(s.clock().UTC().Truncate(time.Second))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireRelations(txCtx, req.PrinterID, req.FilamentID); err != nil {
			return err
		}
		if err := s.costs.Create(txCtx, c); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return conflict(err)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create cost calculation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, pubsub.EventAdded, c)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (_ *models.CostCalculation, err error) {
	ctx, span := tracing.Start(ctx, "cost.Get", tracing.ID(id))
	defer tracing.End(span, &err)

	c, err := s.costs.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, id)
	}
	return c, nil
}

func (s *Service) Find(ctx context.Context, f models.Filter, opts query.Options) (_ query.Result[models.CostCalculation], err error) {
	ctx, span := tracing.Start(ctx, "cost.Find")
	defer tracing.End(span, &err)

	q := query.New(models.Table)
	for _, ref := range []struct {
		path string
		raw  *string
	}{{"printer_id", f.PrinterID}, {"filament_id", f.FilamentID}} {
		if ref.raw == nil {
			continue
		}
		ids, err := query.ParseIDs(*ref.raw)
		if err != nil {
			return query.Result[models.CostCalculation]{}, query.AsDomainError(err)
		}
		q = q.WhereIDs(ref.path, ids)
	}
	q = q.With(opts)
	if err := q.Err(); err != nil {
		return query.Result[models.CostCalculation]{}, query.AsDomainError(err)
	}

	res, err := s.costs.Find(ctx, q)
	if err != nil {
		return query.Result[models.CostCalculation]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find cost calculations")
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRequest) (_ *models.CostCalculation, err error) {
	ctx, span := tracing.Start(ctx, "cost.Update", tracing.ID(id))
	defer tracing.End(span, &err)

	var updated *models.CostCalculation
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.costs.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, id)
		}
		if err := s.requireRelations(txCtx, req.PrinterID, req.FilamentID); err != nil {
			return err
		}
		req.Apply(c)
		if err := s.costs.Update(txCtx, c); err != nil {
			return wrapStoreErr(err, id)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, pubsub.EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "cost.Delete", tracing.ID(id))
	defer tracing.End(span, &err)

	var deleted *models.CostCalculation
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.costs.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, id)
		}
		if err := s.costs.Delete(txCtx, id); err != nil {
			return wrapStoreErr(err, id)
		}
		deleted = c
		return nil
	})
	if err != nil {
		return err
	}

	s.changed(ctx, pubsub.EventDeleted, deleted)
	return nil
}

func (s *Service) requireRelations(ctx context.Context, printerID, filamentID *int64) error {
	if printerID != nil {
		if _, err := s.printers.FindByID(ctx, *printerID); err != nil {
			return relationErr(err, "printer", *printerID)
		}
	}
	if filamentID != nil {
		if _, err := s.filaments.FindByID(ctx, *filamentID); err != nil {
			return relationErr(err, "filament", *filamentID)
		}
	}
	return nil
}

func (s *Service) changed(ctx context.Context, typ pubsub.EventType, c *models.CostCalculation) {
	s.metrics.IncEntityChange(models.Resource, string(typ))
	s.logger.InfoContext(ctx, "cost calculation changed", "cost_id", c.ID, "change", string(typ))
	s.emitter.Emit(ctx, typ, models.Resource, c.ID, c)
}

func relationErr(err error, resource string, id int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "No %s with ID %d found.", resource, id)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, resource+" lookup failed")
}

func wrapStoreErr(err error, id int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "No cost calculation with ID %d found.", id)
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return conflict(err)
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "cost store failed")
}

// conflict reports a write rejected because a row it references was deleted
// after the relation check.
func conflict(err error) error {
	return dErrors.Wrap(err, dErrors.CodeConflict, "a referenced entity was deleted concurrently")
}
