package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spoolman/internal/filament/models"
	"spoolman/internal/filament/service"
	"spoolman/internal/filament/store"
	"spoolman/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	vendorStore := store.NewInMemoryVendors()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(
		service.NewVendorService(vendorStore),
		service.NewFilamentService(store.NewInMemoryFilaments(vendorStore), vendorStore),
		nil,
		logger,
	)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestFilamentRoutes(t *testing.T) {
	r := newRouter(t)

	rr := testutil.DoRequest(r, testutil.NewRequestWithBody(t, http.MethodPost, "/vendor", `{"name":"Prusament"}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	vendor := testutil.UnmarshalResponse[models.Vendor](t, rr)

	testutil.Given(t, "a filament naming an unknown vendor", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequestWithBody(t, http.MethodPost, "/filament",
			`{"vendor_id":42,"density":1.24,"diameter":1.75}`))
		testutil.Then(t, "it is rejected as not found", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
		})
	})

	testutil.Given(t, "a filament of a known vendor", func(t *testing.T) {
		body := testutil.MustMarshal(t, map[string]any{"vendor_id": vendor.ID, "material": "PLA", "density": 1.24, "diameter": 1.75})
		rr := testutil.DoRequest(r, testutil.NewRequestWithBody(t, http.MethodPost, "/filament", body))
		require.Equal(t, http.StatusCreated, rr.Code)
		created := testutil.UnmarshalResponse[models.Filament](t, rr)
		require.NotNil(t, created.Vendor)
		assert.Equal(t, "Prusament", created.Vendor.Name)

		testutil.When(t, "listing by vendor", func(t *testing.T) {
			rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/filament?vendor_id=1&sort=vendor.name:asc"))
			assert.Equal(t, http.StatusOK, rr.Code)
			testutil.AssertTotalCount(t, rr, 1)
		})

		testutil.When(t, "sorting on a scalar path", func(t *testing.T) {
			rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/filament?sort=material.name:asc"))
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_query")
		})
	})

	testutil.Given(t, "the vendor is deleted", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodDelete, "/vendor/1"))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Vendor deleted."}`, rr.Body.String())

		testutil.Then(t, "filaments no longer reference it", func(t *testing.T) {
			rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/filament?vendor_id=-1"))
			testutil.AssertTotalCount(t, rr, 1)
		})
	})
}

func TestFilamentValidation(t *testing.T) {
	r := newRouter(t)

	rr := testutil.DoRequest(r, testutil.NewRequestWithBody(t, http.MethodPost, "/filament", `{"diameter":1.75}`))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")

	rr = testutil.DoRequest(r, testutil.NewRequestWithBody(t, http.MethodPatch, "/vendor/1", `{"name":null}`))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")

	rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/vendor/0"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}
