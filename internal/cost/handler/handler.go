package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spoolman/internal/cost/models"
	"spoolman/internal/platform/middleware"
	"spoolman/internal/query"
	"spoolman/internal/transport/http/shared"
	"spoolman/pkg/platform/httputil"
)

type Service interface {
	Create(ctx context.Context, req *models.CreateRequest) (*models.CostCalculation, error)
	Get(ctx context.Context, id int64) (*models.CostCalculation, error)
	Find(ctx context.Context, f models.Filter, opts query.Options) (query.Result[models.CostCalculation], error)
	Update(ctx context.Context, id int64, req *models.UpdateRequest) (*models.CostCalculation, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves /cost.
type Handler struct {
	service Service
	streams shared.Streamer
	logger  *slog.Logger
}

func New(service Service, streams shared.Streamer, logger *slog.Logger) *Handler {
	return &Handler{service: service, streams: streams, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/cost", func(r chi.Router) {
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
		h.fail(ctx, w, "invalid cost query", err)
		return
	}
	filter := models.Filter{
		PrinterID:  shared.OptionalParam(r, "printer_id"),
		FilamentID: shared.OptionalParam(r, "filament_id"),
	}
	res, err := h.service.Find(ctx, filter, opts)
	if err != nil {
		h.fail(ctx, w, "failed to find cost calculations", err)
		return
	}
	shared.WriteList(w, res)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create cost calculation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get cost calculation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, "failed to update cost calculation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete cost calculation", err)
		return
	}
	shared.Deleted(w, "Cost calculation deleted.")
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	shared.LogError(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}
