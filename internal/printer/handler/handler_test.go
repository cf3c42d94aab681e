package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"spoolman/internal/printer/handler/mocks"
	"spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/internal/transport/http/shared"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/testutil"
)

type PrinterHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestPrinterHandlerSuite(t *testing.T) {
	suite.Run(t, new(PrinterHandlerSuite))
}

func (s *PrinterHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, nil, logger).Register(s.router)
}

var registered = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func (s *PrinterHandlerSuite) TestCreate() {
	s.Run("returns 201 with the created printer", func() {
		s.service.EXPECT().
			Create(gomock.Any(), &models.CreateRequest{Name: "MK4"}).
			Return(&models.Printer{ID: 1, Name: "MK4", Registered: registered}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/printer", `{"name":" MK4 "}`))
		s.Equal(http.StatusCreated, rr.Code)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal(float64(1), (*body)["id"])
		s.NotContains(*body, "comment")
	})

	s.Run("missing name is a validation error", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/printer", `{"power_watts":10}`))
		s.Equal(http.StatusUnprocessableEntity, rr.Code)
	})

	s.Run("unknown fields are rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/printer", `{"name":"a","colour":"red"}`))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *PrinterHandlerSuite) TestFind() {
	s.Run("passes filter and options, sets total count", func() {
		limit := 1
		s.service.EXPECT().
			Find(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.Filter, opts query.Options) (query.Result[models.Printer], error) {
				s.Require().NotNil(f.Name)
				s.Equal("prusa", *f.Name)
				s.Equal([]query.SortKey{{Path: "name", Desc: true}}, opts.Sort)
				s.Equal(&limit, opts.Page.Limit)
				return query.Result[models.Printer]{Items: []models.Printer{{ID: 2, Name: "Prusa"}}, TotalCount: 3}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/printer?name=prusa&sort=name:desc&limit=1"))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("3", rr.Header().Get(shared.TotalCountHeader))
	})

	s.Run("empty result is an empty array", func() {
		s.service.EXPECT().Find(gomock.Any(), models.Filter{}, gomock.Any()).Return(query.Result[models.Printer]{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/printer"))
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`[]`, rr.Body.String())
	})

	s.Run("bad sort direction is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/printer?sort=name:sideways"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *PrinterHandlerSuite) TestGet() {
	s.Run("not found", func() {
		s.service.EXPECT().Get(gomock.Any(), int64(7)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "No printer with ID 7 found."))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/printer/7"))
		s.Equal(http.StatusNotFound, rr.Code)
		s.JSONEq(`{"error":"not_found","message":"No printer with ID 7 found."}`, rr.Body.String())
	})

	s.Run("non numeric id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/printer/abc"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *PrinterHandlerSuite) TestUpdate() {
	s.Run("null name is rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPatch, "/printer/1", `{"name":null}`))
		s.Equal(http.StatusUnprocessableEntity, rr.Code)
	})

	s.Run("applies the patch", func() {
		s.service.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, id int64, req *models.UpdateRequest) (*models.Printer, error) {
				p := &models.Printer{ID: id, Name: "MK4"}
				req.Apply(p)
				return p, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPatch, "/printer/1", `{"comment":"new"}`))
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[models.Printer](s.T(), rr)
		s.Equal("MK4", body.Name)
		s.Equal("new", *body.Comment)
	})
}

func (s *PrinterHandlerSuite) TestDelete() {
	s.service.EXPECT().Delete(gomock.Any(), int64(4)).Return(nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/printer/4"))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"message":"Printer deleted."}`, rr.Body.String())
}
