package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	costhandler "spoolman/internal/cost/handler"
	filamenthandler "spoolman/internal/filament/handler"
	"spoolman/internal/platform/config"
	"spoolman/internal/platform/httpserver"
	"spoolman/internal/platform/logger"
	"spoolman/internal/platform/metrics"
	"spoolman/internal/platform/postgres"
	"spoolman/internal/platform/redis"
	printerhandler "spoolman/internal/printer/handler"
	"spoolman/internal/pubsub"
	"spoolman/internal/pubsub/kafkasink"
	"spoolman/internal/pubsub/relay"
	"spoolman/internal/stream"
	httptransport "spoolman/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("spoolman stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var checks []httptransport.Check

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		if db, err = postgres.Open(ctx, cfg.Database); err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		checks = append(checks, httptransport.Check{Name: "postgres", Probe: db.PingContext})
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set, entities are kept in memory")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)
	eventMetrics := pubsub.NewMetrics(reg)

	registry := pubsub.NewRegistry(pubsub.WithLogger(log), pubsub.WithMetrics(eventMetrics))
	defer registry.Close()

	var sinks []pubsub.Sink
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var eventRelay *relay.Relay
	if rc != nil {
		defer rc.Close()
		eventRelay = relay.New(rc.Client, registry, relay.WithChannel(cfg.Redis.Channel), relay.WithLogger(log))
		sinks = append(sinks, eventRelay)
		checks = append(checks, httptransport.Check{Name: "redis", Probe: rc.Health})
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafkasink.Dial(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, kafkasink.WithLogger(log))
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := sink.Close(flushCtx); err != nil {
				log.Warn("kafka flush failed", "error", err)
			}
		}()
		sinks = append(sinks, sink)
	}

	emitter := pubsub.NewEmitter(registry,
		pubsub.WithSinks(sinks...),
		pubsub.WithEmitterLogger(log),
		pubsub.WithEmitterMetrics(eventMetrics),
	)
	svc := newServices(db, cfg.Database.TxTimeout, serviceDeps{emitter: emitter, logger: log, metrics: httpMetrics})

	streams := stream.NewHandler(registry, stream.Config{
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		SendBuffer:        cfg.Stream.SendBuffer,
	}, log)
	router := httptransport.NewRouter(
		httptransport.Config{Logger: log, Metrics: httpMetrics, Gatherer: reg, Checks: checks},
		printerhandler.New(svc.printers, streams, log),
		filamenthandler.New(svc.vendors, svc.filaments, streams, log),
		costhandler.New(svc.costs, streams, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting spoolman", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if eventRelay != nil {
		g.Go(func() error {
			return eventRelay.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Sessions are hijacked connections the server no longer tracks.
		if err := streams.Shutdown(shutdownCtx); err != nil {
			log.Warn("websocket sessions did not finish", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("spoolman stopped")
		return nil
	})
	return g.Wait()
}
