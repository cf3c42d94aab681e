package pubsub

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Publisher is the part of Registry the emitter needs.
type Publisher interface {
	Publish(topic Topic, ev Event) int
}

// Sink receives every emitted event after local fan-out, e.g. to relay it
// to other instances or export it to a change log.
type Sink interface {
	Name() string
	Send(ctx context.Context, topic Topic, ev Event) error
}

const defaultSinkTimeout = 2 * time.Second

// Emitter turns entity changes into published events.
type Emitter struct {
	publisher   Publisher
	sinks       []Sink
	clock       func() time.Time
	sinkTimeout time.Duration
	logger      *slog.Logger
	metrics     *Metrics
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithClock overrides the clock that stamps event dates.
func WithClock(clock func() time.Time) EmitterOption {
	return func(e *Emitter) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithSinks adds sinks that receive every event after local publish. Nil sinks are skipped.
func WithSinks(sinks ...Sink) EmitterOption {
	return func(e *Emitter) {
		for _, s := range sinks {
			if s != nil {
				e.sinks = append(e.sinks, s)
			}
		}
	}
}

// WithSinkTimeout bounds each sink call.
func WithSinkTimeout(d time.Duration) EmitterOption {
	return func(e *Emitter) {
		if d > 0 {
			e.sinkTimeout = d
		}
	}
}

// WithEmitterLogger sets the logger for encode and sink failures.
func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEmitterMetrics counts published events and sink failures on m.
func WithEmitterMetrics(m *Metrics) EmitterOption {
	return func(e *Emitter) {
		e.metrics = m
	}
}

// NewEmitter returns an emitter publishing to publisher.
func NewEmitter(publisher Publisher, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		publisher:   publisher,
		clock:       time.Now,
		sinkTimeout: defaultSinkTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ItemTopic is the topic of a single entity, e.g. [printer, 42].
func ItemTopic(resource string, id int64) (Topic, error) {
	return NewTopic(resource, strconv.FormatInt(id, 10))
}

// Emit publishes a change of the entity resource/id with snapshot as
// payload. Callers invoke it only after the change is persisted. Failures
// are logged; they never reach the caller.
func (e *Emitter) Emit(ctx context.Context, typ EventType, resource string, id int64, snapshot any) {
	topic, err := ItemTopic(resource, id)
	if err != nil {
		e.logger.ErrorContext(ctx, "invalid event topic", "resource", resource, "id", id, "error", err)
		return
	}
	ev, err := NewEvent(typ, resource, e.clock(), snapshot)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build event", "resource", resource, "id", id, "error", err)
		return
	}

	delivered := e.publisher.Publish(topic, ev)
	e.logger.DebugContext(ctx, "event published",
		"topic", topic.String(),
		"type", string(typ),
		"delivered", delivered,
	)
	e.forward(ctx, topic, ev)
}

func (e *Emitter) forward(ctx context.Context, topic Topic, ev Event) {
	if len(e.sinks) == 0 {
		return
	}
	// The request may finish right after the write it reports on.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.sinkTimeout)
	defer cancel()
	for _, sink := range e.sinks {
		if err := sink.Send(sinkCtx, topic, ev); err != nil {
			e.metrics.incSinkFailure(sink.Name())
			e.logger.WarnContext(ctx, "event sink rejected event",
				"sink", sink.Name(),
				"topic", topic.String(),
				"error", err,
			)
		}
	}
}
