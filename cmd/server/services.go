package main

import (
	"database/sql"
	"log/slog"
	"time"

	costservice "spoolman/internal/cost/service"
	coststore "spoolman/internal/cost/store"
	filamentservice "spoolman/internal/filament/service"
	filamentstore "spoolman/internal/filament/store"
	"spoolman/internal/platform/metrics"
	"spoolman/internal/platform/postgres"
	printerservice "spoolman/internal/printer/service"
	printerstore "spoolman/internal/printer/store"
	"spoolman/internal/pubsub"
	"spoolman/pkg/platform/tx"
)

type services struct {
	printers  *printerservice.Service
	vendors   *filamentservice.VendorService
	filaments *filamentservice.FilamentService
	costs     *costservice.Service
}

type serviceDeps struct {
	emitter *pubsub.Emitter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// newServices uses Postgres stores when db is set and memory stores
// otherwise. Every service shares one tx runner so relation checks and the
// writes they guard are serialized against deletes in other services.
func newServices(db *sql.DB, txTimeout time.Duration, deps serviceDeps) services {
	var (
		runner    tx.Runner
		printers  printerservice.Store
		vendors   filamentservice.VendorStore
		filaments filamentservice.FilamentStore
		costs     costservice.Store
	)
	if db != nil {
		runner = postgres.NewTxRunner(db, txTimeout)
		printers = printerstore.NewPostgres(db)
		vendors = filamentstore.NewPostgresVendors(db)
		filaments = filamentstore.NewPostgresFilaments(db)
		costs = coststore.NewPostgres(db)
	} else {
		runner = &tx.Local{}
		p := printerstore.NewInMemory()
		v := filamentstore.NewInMemoryVendors()
		f := filamentstore.NewInMemoryFilaments(v)
		printers, vendors, filaments = p, v, f
		costs = coststore.NewInMemory(p, f)
	}

	return services{
		printers: printerservice.New(printers,
			printerservice.WithTx(runner),
			printerservice.WithEmitter(deps.emitter),
			printerservice.WithLogger(deps.logger),
			printerservice.WithMetrics(deps.metrics),
		),
		vendors: filamentservice.NewVendorService(vendors,
			filamentservice.WithTx(runner),
			filamentservice.WithEmitter(deps.emitter),
			filamentservice.WithLogger(deps.logger),
			filamentservice.WithMetrics(deps.metrics),
		),
		filaments: filamentservice.NewFilamentService(filaments, vendors,
			filamentservice.WithTx(runner),
			filamentservice.WithEmitter(deps.emitter),
			filamentservice.WithLogger(deps.logger),
			filamentservice.WithMetrics(deps.metrics),
		),
		costs: costservice.New(costs, printers, filaments,
			costservice.WithTx(runner),
			costservice.WithEmitter(deps.emitter),
			costservice.WithLogger(deps.logger),
			costservice.WithMetrics(deps.metrics),
		),
	}
}
