package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spoolman/internal/platform/middleware"
	"spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/internal/transport/http/shared"
	"spoolman/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/printer-mocks.go -package=mocks Service
type Service interface {
	Create(ctx context.Context, req *models.CreateRequest) (*models.Printer, error)
	Get(ctx context.Context, id int64) (*models.Printer, error)
	Find(ctx context.Context, f models.Filter, opts query.Options) (query.Result[models.Printer], error)
	Update(ctx context.Context, id int64, req *models.UpdateRequest) (*models.Printer, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves /printer.
type Handler struct {
	service Service
	streams shared.Streamer
	logger  *slog.Logger
}

// New builds the printer handler. streams may be nil, in which case the
// routes serve no websocket subscriptions.
func New(service Service, streams shared.Streamer, logger *slog.Logger) *Handler {
	return &Handler{service: service, streams: streams, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/printer", func(r chi.Router) {
		r.Get("/", shared.Stream(h.streams, shared.CollectionTopic(models.Resource), h.handleFind))
		r.Post("/", h.handleCreate)
		r.Get("/{id}", shared.Stream(h.streams, shared.ItemTopic(models.Resource), h.handleGet))
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := shared.ParseOptions(r)
	if err != nil {
		h.fail(ctx, w, "invalid printer query", err)
		return
	}
	res, err := h.service.Find(ctx, models.Filter{Name: shared.OptionalParam(r, "name")}, opts)
	if err != nil {
		h.fail(ctx, w, "failed to find printers", err)
		return
	}
	shared.WriteList(w, res)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create printer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get printer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, "failed to update printer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete printer", err)
		return
	}
	shared.Deleted(w, "Printer deleted.")
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	shared.LogError(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}
