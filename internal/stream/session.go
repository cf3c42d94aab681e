// Package stream serves change events to websocket clients. Each connection
// is a Session subscribed to one topic for exactly as long as the
// connection lives.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"spoolman/internal/pubsub"
)

const (
	DefaultHeartbeatInterval = 500 * time.Millisecond
	DefaultSendBuffer        = 256

	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

var (
	ErrSendBufferFull = errors.New("session send buffer full")
	ErrSessionClosed  = errors.New("session closed")

	errPeerGone = errors.New("peer gone")
)

var healthyAck = []byte(`{"status":"healthy"}`)

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Registry is where sessions subscribe.
type Registry interface {
	Subscribe(topic pubsub.Topic, sub pubsub.Subscriber) error
	Unsubscribe(topic pubsub.Topic, sub pubsub.Subscriber)
}

// Config tunes session timing and buffering.
type Config struct {
	HeartbeatInterval time.Duration
	SendBuffer        int
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	return c
}

// Session is one live connection subscribed to one topic.
type Session struct {
	id       string
	topic    pubsub.Topic
	conn     Conn
	registry Registry
	cfg      Config
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	send   chan pubsub.Event
	acks   chan struct{}
	// failed is closed when a delivery overflows the send buffer.
	failed chan struct{}

	release sync.Once
}

// NewSession prepares a session. It subscribes when Run is called.
func NewSession(conn Conn, topic pubsub.Topic, registry Registry, cfg Config, logger *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		topic:    topic,
		conn:     conn,
		registry: registry,
		cfg:      cfg,
		logger:   logger.With("session_id", id, "topic", topic.String()),
		send:     make(chan pubsub.Event, cfg.SendBuffer),
		acks:     make(chan struct{}, 1),
		failed:   make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Deliver queues ev for the writer without blocking. A full buffer fails
// the session: Run stops and the connection is closed.
func (s *Session) Deliver(ev pubsub.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.send <- ev:
		return nil
	default:
		s.closed = true
		close(s.failed)
		return ErrSendBufferFull
	}
}

// Run subscribes, then serves heartbeats and events until the peer goes
// away, a write or delivery fails, or ctx is cancelled. The subscription is released on
// every return path.
func (s *Session) Run(ctx context.Context) error {
	if err := s.registry.Subscribe(s.topic, s); err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	defer s.close()
	s.logger.DebugContext(ctx, "session subscribed")

	s.conn.SetReadLimit(maxMessageSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.heartbeat(gctx) })
	g.Go(func() error { return s.write(gctx) })
	g.Go(func() error {
		var err error
		select {
		case <-gctx.Done():
		case <-s.failed:
			err = ErrSendBufferFull
		}
		// Unblocks a heartbeat stuck in ReadMessage and a stalled write.
		_ = s.conn.Close()
		return err
	})

	err := g.Wait()
	select {
	case <-s.failed:
		err = ErrSendBufferFull
	default:
		if errors.Is(err, errPeerGone) || errors.Is(err, context.Canceled) {
			err = nil
		}
	}
	s.logger.DebugContext(ctx, "session ended", "error", err)
	return err
}

func (s *Session) close() {
	s.release.Do(func() {
		s.registry.Unsubscribe(s.topic, s)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		_ = s.conn.Close()
	})
}

// heartbeat waits one interval, reads a frame from the peer and asks the
// writer to acknowledge it.
func (s *Session) heartbeat(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.HeartbeatInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", errPeerGone, err)
		}
		select {
		case s.acks <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		timer.Reset(s.cfg.HeartbeatInterval)
	}
}

// write is the only goroutine writing to the connection.
func (s *Session) write(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.acks:
			if err := s.writeFrame(healthyAck); err != nil {
				return err
			}
		case ev := <-s.send:
			body, err := json.Marshal(ev)
			if err != nil {
				s.logger.ErrorContext(ctx, "dropping unencodable event", "error", err)
				continue
			}
			if err := s.writeFrame(body); err != nil {
				return err
			}
		}
	}
}

func (s *Session) writeFrame(body []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("%w: %v", errPeerGone, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return fmt.Errorf("%w: %v", errPeerGone, err)
	}
	return nil
}
