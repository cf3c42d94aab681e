// Package service implements vendor and filament CRUD.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"spoolman/internal/filament/models"
	"spoolman/internal/platform/metrics"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

type VendorStore interface {
	Create(ctx context.Context, v *models.Vendor) error
	FindByID(ctx context.Context, id int64) (*models.Vendor, error)
	Find(ctx context.Context, q *query.Query[models.Vendor]) (query.Result[models.Vendor], error)
	Update(ctx context.Context, v *models.Vendor) error
	Delete(ctx context.Context, id int64) error
}

type FilamentStore interface {
	Create(ctx context.Context, f *models.Filament) error
	FindByID(ctx context.Context, id int64) (*models.Filament, error)
	Find(ctx context.Context, q *query.Query[models.Filament]) (query.Result[models.Filament], error)
	Update(ctx context.Context, f *models.Filament) error
	Delete(ctx context.Context, id int64) error
}

type Emitter interface {
	Emit(ctx context.Context, typ pubsub.EventType, resource string, id int64, snapshot any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, pubsub.EventType, string, int64, any) {}

type config struct {
	emitter Emitter
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
}

type Option func(*config)

// WithEmitter sets where change events go. Nil keeps the no-op emitter.
func WithEmitter(e Emitter) Option {
	return func(c *config) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithTx sets the unit-of-work runner.
func WithTx(r tx.Runner) Option {
	return func(c *config) {
		if r != nil {
			c.tx = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics counts entity changes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithClock overrides the clock used for created timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

func newConfig(opts []Option) config {
	c := config{
		emitter: noopEmitter{},
		tx:      &tx.Local{},
		logger:  slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *config) now() time.Time {
	return c.clock().UTC().Truncate(time.Second)
}

func (c *config) changed(ctx context.Context, typ pubsub.EventType, resource string, id int64, snapshot any) {
	c.metrics.IncEntityChange(resource, string(typ))
	c.logger.InfoContext(ctx, resource+" changed", resource+"_id", id, "change", string(typ))
	c.emitter.Emit(ctx, typ, resource, id, snapshot)
}

func wrapStoreErr(err error, resource string, id int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "No %s with ID %d found.", resource, id)
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return conflict(err)
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, resource+" store failed")
}

// conflict reports a write rejected because a row it references was deleted
// after the relation check.
func conflict(err error) error {
	return dErrors.Wrap(err, dErrors.CodeConflict, "a referenced entity was deleted concurrently")
}
