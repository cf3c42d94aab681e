// Package kafkasink exports change events to a Kafka topic as an
// append-only change log. Records are keyed by entity topic so every change
// of one entity lands on the same partition in order.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"spoolman/internal/pubsub"
	"spoolman/pkg/platform/circuit"
)

// Producer is the part of *kgo.Client the sink uses.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

type Sink struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Sink)

// WithLogger sets the sink logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBreaker replaces the breaker guarding produces.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) {
		if b != nil {
			s.breaker = b
		}
	}
}

// New wraps an existing producer.
func New(producer Producer, topic string, opts ...Option) *Sink {
	s := &Sink{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("kafka-sink"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to brokers, creates topic when missing and returns a sink
// producing to it.
func Dial(ctx context.Context, brokers []string, topic string, opts ...Option) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := EnsureTopic(ctx, kadm.NewClient(cl), topic); err != nil {
		cl.Close()
		return nil, err
	}
	return New(cl, topic, opts...), nil
}

// EnsureTopic creates topic with one partition unless it already exists.
func EnsureTopic(ctx context.Context, adm *kadm.Client, topic string) error {
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *Sink) Name() string {
	return "kafka"
}

// Send queues ev for production. Delivery results arrive asynchronously and
// feed the circuit breaker; an open circuit rejects events immediately.
func (s *Sink) Send(ctx context.Context, topic pubsub.Topic, ev pubsub.Event) error {
	if !s.breaker.Allow() {
		return circuit.ErrOpen
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(topic.String()),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "resource", Value: []byte(ev.Resource)},
		},
		Timestamp: ev.Date,
	}
	// The record outlives the request that produced it.
	s.producer.Produce(context.WithoutCancel(ctx), rec, s.onResult)
	return nil
}

func (s *Sink) onResult(rec *kgo.Record, err error) {
	if err != nil {
		_, change := s.breaker.RecordFailure()
		s.logger.Warn("kafka produce failed", "key", string(rec.Key), "error", err, "circuit_opened", change.Opened)
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("kafka sink recovered", "topic", s.topic)
	}
}

// Close flushes buffered records and closes the producer.
func (s *Sink) Close(ctx context.Context) error {
	err := s.producer.Flush(ctx)
	s.producer.Close()
	return err
}
