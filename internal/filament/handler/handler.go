package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spoolman/internal/filament/models"
	"spoolman/internal/platform/middleware"
	"spoolman/internal/query"
	"spoolman/internal/transport/http/shared"
	"spoolman/pkg/platform/httputil"
)

type VendorService interface {
	Create(ctx context.Context, req *models.CreateVendorRequest) (*models.Vendor, error)
	Get(ctx context.Context, id int64) (*models.Vendor, error)
	Find(ctx context.Context, f models.VendorFilter, opts query.Options) (query.Result[models.Vendor], error)
	Update(ctx context.Context, id int64, req *models.UpdateVendorRequest) (*models.Vendor, error)
	Delete(ctx context.Context, id int64) error
}

type FilamentService interface {
	Create(ctx context.Context, req *models.CreateFilamentRequest) (*models.Filament, error)
	Get(ctx context.Context, id int64) (*models.Filament, error)
	Find(ctx context.Context, f models.FilamentFilter, opts query.Options) (query.Result[models.Filament], error)
	Update(ctx context.Context, id int64, req *models.UpdateFilamentRequest) (*models.Filament, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves /vendor and /filament.
type Handler struct {
	vendors   VendorService
	filaments FilamentService
	streams   shared.Streamer
	logger    *slog.Logger
}

func New(vendors VendorService, filaments FilamentService, streams shared.Streamer, logger *slog.Logger) *Handler {
	return &Handler{vendors: vendors, filaments: filaments, streams: streams, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/vendor", func(r chi.Router) {
		r.Get("/", shared.Stream(h.streams, shared.CollectionTopic(models.VendorResource), h.handleFindVendors))
		r.Post("/", h.handleCreateVendor)
		r.Get("/{id}", shared.Stream(h.streams, shared.ItemTopic(models.VendorResource), h.handleGetVendor))
		r.Patch("/{id}", h.handleUpdateVendor)
		r.Delete("/{id}", h.handleDeleteVendor)
	})
	r.Route("/filament", func(r chi.Router) {
		r.Get("/", shared.Stream(h.streams, shared.CollectionTopic(models.FilamentResource), h.handleFindFilaments))
		r.Post("/", h.handleCreateFilament)
		r.Get("/{id}", shared.Stream(h.streams, shared.ItemTopic(models.FilamentResource), h.handleGetFilament))
		r.Patch("/{id}", h.handleUpdateFilament)
		r.Delete("/{id}", h.handleDeleteFilament)
	})
}

func (h *Handler) handleFindVendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := shared.ParseOptions(r)
	if err != nil {
		h.fail(ctx, w, "invalid vendor query", err)
		return
	}
	res, err := h.vendors.Find(ctx, models.VendorFilter{Name: shared.OptionalParam(r, "name")}, opts)
	if err != nil {
		h.fail(ctx, w, "failed to find vendors", err)
		return
	}
	shared.WriteList(w, res)
}

func (h *Handler) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateVendorRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	v, err := h.vendors.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.vendors.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleUpdateVendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateVendorRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	v, err := h.vendors.Update(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, "failed to update vendor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.vendors.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete vendor", err)
		return
	}
	shared.Deleted(w, "Vendor deleted.")
}

func (h *Handler) handleFindFilaments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := shared.ParseOptions(r)
	if err != nil {
		h.fail(ctx, w, "invalid filament query", err)
		return
	}
	filter := models.FilamentFilter{
		Name:     shared.OptionalParam(r, "name"),
		Material: shared.OptionalParam(r, "material"),
		VendorID: shared.OptionalParam(r, "vendor_id"),
	}
	res, err := h.filaments.Find(ctx, filter, opts)
	if err != nil {
		h.fail(ctx, w, "failed to find filaments", err)
		return
	}
	shared.WriteList(w, res)
}

func (h *Handler) handleCreateFilament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateFilamentRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	f, err := h.filaments.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create filament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) handleGetFilament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	f, err := h.filaments.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get filament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) handleUpdateFilament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateFilamentRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	f, err := h.filaments.Update(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, "failed to update filament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) handleDeleteFilament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := shared.ParseID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.filaments.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete filament", err)
		return
	}
	shared.Deleted(w, "Filament deleted.")
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	shared.LogError(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}
