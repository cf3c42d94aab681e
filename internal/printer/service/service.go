package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spoolman/internal/platform/metrics"
	"spoolman/internal/platform/tracing"
	"spoolman/internal/printer/models"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

//go:generate mockgen -source=service.go -destination=mocks/store-mocks.go -package=mocks Store,Emitter
type Store interface {
	Create(ctx context.Context, p *models.Printer) error
	FindByID(ctx context.Context, id int64) (*models.Printer, error)
	Find(ctx context.Context, q *query.Query[models.Printer]) (query.Result[models.Printer], error)
	Update(ctx context.Context, p *models.Printer) error
	Delete(ctx context.Context, id int64) error
}

// Emitter publishes entity changes.
type Emitter interface {
	Emit(ctx context.Context, typ pubsub.EventType, resource string, id int64, snapshot any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, pubsub.EventType, string, int64, any) {}

// Service implements printer CRUD and announces every change.
type Service struct {
	store   Store
	emitter Emitter
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
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

// New returns a printer service backed by store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		emitter: noopEmitter{},
		tx:      &tx.Local{},
		logger:  slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (_ *models.Printer, err error) {
	ctx, span := tracing.Start(ctx, "printer.Create")
	defer tracing.End(span, &err)

	p := &models.Printer{
		Registered:              s.clock().UTC().Truncate(time.Second),
		Name:                    req.Name,
		PowerWatts:              req.PowerWatts,
		DepreciationCostPerHour: req.DepreciationCostPerHour,
		Comment:                 req.Comment,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create printer")
	}

	s.changed(ctx, pubsub.EventAdded, p)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (_ *models.Printer, err error) {
	ctx, span := tracing.Start(ctx, "printer.Get", tracing.ID(id))
	defer tracing.End(span, &err)

	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, id)
	}
	return p, nil
}

func (s *Service) Find(ctx context.Context, f models.Filter, opts query.Options) (_ query.Result[models.Printer], err error) {
	ctx, span := tracing.Start(ctx, "printer.Find")
	defer tracing.End(span, &err)

	q := query.New(models.Table)
	if f.Name != nil {
		q = q.WhereTerms("name", query.ParseTerms(*f.Name))
	}
	q = q.With(opts)
	if err := q.Err(); err != nil {
		return query.Result[models.Printer]{}, query.AsDomainError(err)
	}

	res, err := s.store.Find(ctx, q)
	if err != nil {
		return query.Result[models.Printer]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find printers")
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRequest) (_ *models.Printer, err error) {
	ctx, span := tracing.Start(ctx, "printer.Update", tracing.ID(id))
	defer tracing.End(span, &err)

	var updated *models.Printer
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.store.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, id)
		}
		req.Apply(p)
		if err := s.store.Update(txCtx, p); err != nil {
			return wrapStoreErr(err, id)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, pubsub.EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "printer.Delete", tracing.ID(id))
	defer tracing.End(span, &err)

	var deleted *models.Printer
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.store.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, id)
		}
		if err := s.store.Delete(txCtx, id); err != nil {
			return wrapStoreErr(err, id)
		}
		deleted = p
		return nil
	})
	if err != nil {
		return err
	}

	s.changed(ctx, pubsub.EventDeleted, deleted)
	return nil
}

func (s *Service) changed(ctx context.Context, typ pubsub.EventType, p *models.Printer) {
	s.metrics.IncEntityChange(models.Resource, string(typ))
	s.logger.InfoContext(ctx, "printer changed", "printer_id", p.ID, "change", string(typ))
	s.emitter.Emit(ctx, typ, models.Resource, p.ID, p)
}

func wrapStoreErr(err error, id int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "No printer with ID %d found.", id)
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "printer store failed")
}
