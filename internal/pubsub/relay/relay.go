// Package relay shares change events between service instances through a
// Redis pub/sub channel, so websocket clients connected to any instance see
// changes written through every instance.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"spoolman/internal/pubsub"
	"spoolman/pkg/platform/circuit"
)

const DefaultChannel = "spoolman:events"

type envelope struct {
	Origin string       `json:"origin"`
	Topic  []string     `json:"topic"`
	Event  pubsub.Event `json:"event"`
}

// Relay is a pubsub.Sink that publishes local events to Redis, and a
// receiver that republishes events from other instances into the local
// registry. Events carry the sending instance's origin so an instance never
// delivers its own events twice.
type Relay struct {
	client  redis.UniversalClient
	local   pubsub.Publisher
	channel string
	origin  string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Relay)

// WithChannel sets the Redis channel. Defaults to DefaultChannel.
func WithChannel(channel string) Option {
	return func(r *Relay) {
		if channel != "" {
			r.channel = channel
		}
	}
}

// WithLogger sets the relay logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBreaker replaces the breaker guarding publishes.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
	}
}

// New returns a relay that forwards events from this instance to client and
// replays other instances' events on local.
func New(client redis.UniversalClient, local pubsub.Publisher, opts ...Option) *Relay {
	r := &Relay{
		client:  client,
		local:   local,
		channel: DefaultChannel,
		origin:  uuid.NewString(),
		breaker: circuit.New("redis-relay"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Name() string {
	return "redis-relay"
}

// Origin identifies this instance on the channel.
func (r *Relay) Origin() string {
	return r.origin
}

// Send publishes ev for the other instances.
func (r *Relay) Send(ctx context.Context, topic pubsub.Topic, ev pubsub.Event) error {
	if !r.breaker.Allow() {
		return circuit.ErrOpen
	}
	body, err := json.Marshal(envelope{Origin: r.origin, Topic: topic.Segments(), Event: ev})
	if err != nil {
		return fmt.Errorf("encode relay envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		if _, change := r.breaker.RecordFailure(); change.Opened {
			r.logger.WarnContext(ctx, "redis relay circuit opened", "channel", r.channel)
		}
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "redis relay circuit closed", "channel", r.channel)
	}
	return nil
}

// Run subscribes to the channel and republishes remote events locally until
// ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.logger.InfoContext(ctx, "redis relay subscribed", "channel", r.channel, "origin", r.origin)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

// handle returns the number of local deliveries for the message.
func (r *Relay) handle(ctx context.Context, payload string) int {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.WarnContext(ctx, "discarding malformed relay message", "error", err)
		return 0
	}
	if env.Origin == r.origin {
		return 0
	}
	topic, err := pubsub.NewTopic(env.Topic...)
	if err != nil {
		r.logger.WarnContext(ctx, "discarding relay message with invalid topic", "error", err)
		return 0
	}
	return r.local.Publish(topic, env.Event)
}
