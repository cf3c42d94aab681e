package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"spoolman/internal/pubsub"
	"spoolman/pkg/platform/httputil"
)

// TopicFunc derives the subscription topic from a request.
type TopicFunc func(r *http.Request) (pubsub.Topic, error)

// Handler upgrades requests to websocket sessions.
type Handler struct {
	upgrader websocket.Upgrader
	registry Registry
	cfg      Config
	logger   *slog.Logger

	mu       sync.Mutex
	stopping bool
	quit     chan struct{}
	sessions sync.WaitGroup
}

// NewHandler returns a handler serving sessions on registry.
func NewHandler(registry Registry, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are browsers served from other origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		registry: registry,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Upgrading serves websocket upgrade requests as sessions on the topic
// returned by topic, and hands every other request to next.
func (h *Handler) Upgrading(topic TopicFunc, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !websocket.IsWebSocketUpgrade(r) {
			next(w, r)
			return
		}
		t, err := topic(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.Serve(w, r, t)
	}
}

// Serve upgrades the request and runs a session until it ends.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, topic pubsub.Topic) {
	if !h.track() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.sessions.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err, "topic", topic.String())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-h.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	session := NewSession(conn, topic, h.registry, h.cfg, h.logger)
	if err := session.Run(ctx); err != nil {
		h.logger.WarnContext(ctx, "websocket session failed", "error", err, "topic", topic.String())
	}
}

func (h *Handler) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopping {
		return false
	}
	h.sessions.Add(1)
	return true
}

// Shutdown ends every running session and waits for them to release their
// subscriptions, or for ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.stopping {
		h.stopping = true
		close(h.quit)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
