package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"spoolman/internal/cost/models"
	"spoolman/internal/cost/service/mocks"
	"spoolman/internal/cost/store"
	filamentmodels "spoolman/internal/filament/models"
	filamentstore "spoolman/internal/filament/store"
	printermodels "spoolman/internal/printer/models"
	printerstore "spoolman/internal/printer/store"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/sentinel"
)

type recordingEmitter struct {
	types     []pubsub.EventType
	snapshots []models.CostCalculation
}

func (r *recordingEmitter) Emit(_ context.Context, typ pubsub.EventType, resource string, _ int64, snapshot any) {
	if resource != models.Resource {
		return
	}
	r.types = append(r.types, typ)
	r.snapshots = append(r.snapshots, *snapshot.(*models.CostCalculation))
}

type CostServiceSuite struct {
	suite.Suite
	ctx       context.Context
	printers  *printerstore.InMemoryStore
	filaments *filamentstore.InMemoryFilamentStore
	costs     *store.InMemoryStore
	emitter   *recordingEmitter
	service   *Service
}

func TestCostServiceSuite(t *testing.T) {
	suite.Run(t, new(CostServiceSuite))
}

func (s *CostServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.printers = printerstore.NewInMemory()
	vendors := filamentstore.NewInMemoryVendors()
	s.filaments = filamentstore.NewInMemoryFilaments(vendors)
	s.costs = store.NewInMemory(s.printers, s.filaments)
	s.emitter = &recordingEmitter{}
	s.service = New(s.costs, s.printers, s.filaments,
		WithEmitter(s.emitter),
		WithClock(func() time.Time { return time.Date(2026, 7, 1, 9, 0, 0, 123, time.UTC) }),
	)
}

func ptr[T any](v T) *T { return &v }

func (s *CostServiceSuite) printer() int64 {
	p := &printermodels.Printer{Name: "MK4"}
	s.Require().NoError(s.printers.Create(s.ctx, p))
	return p.ID
}

func (s *CostServiceSuite) TestCreate() {
	printerID := s.printer()
	c, err := s.service.Create(s.ctx, &models.CreateRequest{PrinterID: &printerID, FinalPrice: ptr(42.0), Currency: ptr("EUR")})
	s.Require().NoError(err)

	s.Equal(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), c.Created)
	s.Require().NotNil(c.Printer)
	s.Equal("MK4", c.Printer.Name)
	s.Equal([]pubsub.EventType{pubsub.EventAdded}, s.emitter.types)
	s.Equal("MK4", s.emitter.snapshots[0].Printer.Name)
}

func (s *CostServiceSuite) TestMissingRelationPersistsAndEmitsNothing() {
	s.Run("printer", func() {
		_, err := s.service.Create(s.ctx, &models.CreateRequest{PrinterID: ptr(int64(404)), FinalPrice: ptr(1.0)})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "No printer with ID 404 found.")
	})

	s.Run("filament", func() {
		_, err := s.service.Create(s.ctx, &models.CreateRequest{FilamentID: ptr(int64(9))})
		s.Require().Error(err)
		s.Contains(err.Error(), "No filament with ID 9 found.")
	})

	s.Empty(s.emitter.types)
	s.Zero(s.costs.Count())
}

func (s *CostServiceSuite) TestUpdateWithMissingRelationKeepsRow() {
	c, err := s.service.Create(s.ctx, &models.CreateRequest{})
	s.Require().NoError(err)

	_, err = s.service.Update(s.ctx, c.ID, &models.UpdateRequest{PrinterID: ptr(int64(77)), Notes: ptr("x")})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	stored, err := s.service.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Nil(stored.Notes)
	s.Equal([]pubsub.EventType{pubsub.EventAdded}, s.emitter.types)
}

func (s *CostServiceSuite) TestFind() {
	printerID := s.printer()
	for _, price := range []float64{30, 10, 20} {
		_, err := s.service.Create(s.ctx, &models.CreateRequest{PrinterID: &printerID, FinalPrice: ptr(price)})
		s.Require().NoError(err)
	}
	_, err := s.service.Create(s.ctx, &models.CreateRequest{FinalPrice: ptr(5.0)})
	s.Require().NoError(err)

	s.Run("by printer with pagination", func() {
		limit := 2
		keys, err := query.ParseSort("final_price:desc")
		s.Require().NoError(err)
		res, err := s.service.Find(s.ctx, models.Filter{PrinterID: ptr("1")}, query.Options{Sort: keys, Page: query.Page{Limit: &limit}})
		s.Require().NoError(err)
		s.Equal(3, res.TotalCount)
		s.Require().Len(res.Items, 2)
		s.Equal(30.0, *res.Items[0].FinalPrice)
		s.Equal(20.0, *res.Items[1].FinalPrice)
	})

	s.Run("absent printer", func() {
		res, err := s.service.Find(s.ctx, models.Filter{PrinterID: ptr("-1")}, query.Options{})
		s.Require().NoError(err)
		s.Equal(1, res.TotalCount)
	})

	s.Run("unknown nested field", func() {
		_, err := s.service.Find(s.ctx, models.Filter{}, query.Options{Sort: []query.SortKey{{Path: "printer.vendor"}}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidQuery))
	})

	s.Run("negative limit", func() {
		limit := -1
		_, err := s.service.Find(s.ctx, models.Filter{}, query.Options{Page: query.Page{Limit: &limit}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidQuery))
	})
}

func (s *CostServiceSuite) TestUpdateAndDelete() {
	c, err := s.service.Create(s.ctx, &models.CreateRequest{BasePrice: ptr(10.0)})
	s.Require().NoError(err)

	printerID := s.printer()
	updated, err := s.service.Update(s.ctx, c.ID, &models.UpdateRequest{PrinterID: &printerID, FinalPrice: ptr(12.0)})
	s.Require().NoError(err)
	s.Equal(10.0, *updated.BasePrice)
	s.Equal(12.0, *updated.FinalPrice)
	s.Require().NotNil(updated.Printer)

	s.Require().NoError(s.service.Delete(s.ctx, c.ID))
	s.Equal([]pubsub.EventType{pubsub.EventAdded, pubsub.EventUpdated, pubsub.EventDeleted}, s.emitter.types)
	s.Equal(12.0, *s.emitter.snapshots[2].FinalPrice)

	err = s.service.Delete(s.ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "No cost calculation with ID 1 found.")
}

func (s *CostServiceSuite) TestLookupFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	costs := mocks.NewMockStore(ctrl)
	printers := mocks.NewMockPrinterLookup(ctrl)
	filaments := mocks.NewMockFilamentLookup(ctrl)
	svc := New(costs, printers, filaments)

	boom := errors.New("connection refused")
	printers.EXPECT().FindByID(gomock.Any(), int64(1)).Return(&printermodels.Printer{ID: 1}, nil)
	filaments.EXPECT().FindByID(gomock.Any(), int64(2)).Return(nil, boom)

	_, err := svc.Create(s.ctx, &models.CreateRequest{PrinterID: ptr(int64(1)), FilamentID: ptr(int64(2))})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, boom)

	filaments.EXPECT().FindByID(gomock.Any(), int64(3)).Return(&filamentmodels.Filament{ID: 3}, nil)
	costs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err = svc.Create(s.ctx, &models.CreateRequest{FilamentID: ptr(int64(3))})
	s.Require().NoError(err)

	costs.EXPECT().FindByID(gomock.Any(), int64(8)).Return(nil, sentinel.ErrNotFound)
	_, err = svc.Get(s.ctx, 8)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CostServiceSuite) TestRelationDeletedDuringWriteIsConflict() {
	ctrl := gomock.NewController(s.T())
	costs := mocks.NewMockStore(ctrl)
	printers := mocks.NewMockPrinterLookup(ctrl)
	svc := New(costs, printers, mocks.NewMockFilamentLookup(ctrl))

	printers.EXPECT().FindByID(gomock.Any(), int64(1)).Return(&printermodels.Printer{ID: 1}, nil)
	costs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.Join(errors.New("insert cost calculation"), sentinel.ErrConflict))

	_, err := svc.Create(s.ctx, &models.CreateRequest{PrinterID: ptr(int64(1))})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
