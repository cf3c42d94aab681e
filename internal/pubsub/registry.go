package pubsub

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrAlreadySubscribed = errors.New("subscriber already registered under another topic")
	ErrRegistryClosed    = errors.New("registry closed")
)

// Subscriber receives events from a Registry. Deliver is called with the
// registry lock held and must not block or call back into the registry; an
// error removes the subscriber.
type Subscriber interface {
	ID() string
	Deliver(Event) error
}

type membership struct {
	sub   Subscriber
	topic Topic
}

// Registry tracks which subscribers listen on which topics.
type Registry struct {
	mu      sync.Mutex
	topics  map[string]map[string]Subscriber
	members map[string]membership
	closed  bool

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used when a subscriber is dropped.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records deliveries and subscriber counts on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		topics:  make(map[string]map[string]Subscriber),
		members: make(map[string]membership),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Subscribe registers sub under topic. Subscribing again under the same
// topic is a no-op.
func (r *Registry) Subscribe(topic Topic, sub Subscriber) error {
	if topic.IsZero() {
		return ErrInvalidTopic
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	id := sub.ID()
	if m, ok := r.members[id]; ok {
		if m.topic.Equal(topic) {
			return nil
		}
		return ErrAlreadySubscribed
	}
	key := topic.key()
	set, ok := r.topics[key]
	if !ok {
		set = make(map[string]Subscriber)
		r.topics[key] = set
	}
	set[id] = sub
	r.members[id] = membership{sub: sub, topic: topic}
	r.metrics.setSubscribers(len(r.members))
	return nil
}

// Unsubscribe removes sub from topic. Removing a subscriber that is not
// registered there does nothing. Once Unsubscribe returns, sub receives no
// further events.
func (r *Registry) Unsubscribe(topic Topic, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[sub.ID()]
	if !ok || !m.topic.Equal(topic) {
		return
	}
	r.removeLocked(sub.ID(), m.topic)
}

func (r *Registry) removeLocked(id string, topic Topic) {
	key := topic.key()
	if set, ok := r.topics[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.topics, key)
		}
	}
	delete(r.members, id)
	r.metrics.setSubscribers(len(r.members))
}

// Publish delivers ev to the subscribers of topic and of every ancestor of
// topic, and returns the number of successful deliveries. Subscribers whose
// delivery fails are removed; the others still receive the event.
func (r *Registry) Publish(topic Topic, ev Event) int {
	if topic.IsZero() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.incPublished(ev)
	delivered := r.deliverLocked(topic, ev)
	for _, ancestor := range topic.Ancestors() {
		delivered += r.deliverLocked(ancestor, ev)
	}
	r.metrics.addDeliveries(delivered)
	return delivered
}

func (r *Registry) deliverLocked(topic Topic, ev Event) int {
	set := r.topics[topic.key()]
	delivered := 0
	var failed []string
	for id, sub := range set {
		if err := sub.Deliver(ev); err != nil {
			r.logger.Warn("dropping subscriber after failed delivery",
				"subscriber", id,
				"topic", topic.String(),
				"resource", ev.Resource,
				"error", err,
			)
			failed = append(failed, id)
			continue
		}
		delivered++
	}
	for _, id := range failed {
		r.metrics.incDeliveryFailures()
		r.removeLocked(id, topic)
	}
	return delivered
}

// Count returns the number of subscribers registered directly under topic.
func (r *Registry) Count(topic Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics[topic.key()])
}

// Len returns the number of registered subscribers across all topics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Close drops every membership and rejects later subscriptions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	clear(r.topics)
	clear(r.members)
	r.metrics.setSubscribers(0)
}
