package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spoolman/internal/cost/models"
	filamentmodels "spoolman/internal/filament/models"
	filamentstore "spoolman/internal/filament/store"
	printermodels "spoolman/internal/printer/models"
	printerstore "spoolman/internal/printer/store"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
)

type CostStoreSuite struct {
	suite.Suite
	ctx       context.Context
	printers  *printerstore.InMemoryStore
	vendors   *filamentstore.InMemoryVendorStore
	filaments *filamentstore.InMemoryFilamentStore
	costs     *InMemoryStore
}

func TestCostStoreSuite(t *testing.T) {
	suite.Run(t, new(CostStoreSuite))
}

func (s *CostStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.printers = printerstore.NewInMemory()
	s.vendors = filamentstore.NewInMemoryVendors()
	s.filaments = filamentstore.NewInMemoryFilaments(s.vendors)
	s.costs = NewInMemory(s.printers, s.filaments)
}

func ptr[T any](v T) *T { return &v }

func (s *CostStoreSuite) printer(name string) int64 {
	p := &printermodels.Printer{Name: name, Registered: time.Now().UTC()}
	s.Require().NoError(s.printers.Create(s.ctx, p))
	return p.ID
}

func (s *CostStoreSuite) filament(vendor string) int64 {
	v := &filamentmodels.Vendor{Name: vendor}
	s.Require().NoError(s.vendors.Create(s.ctx, v))
	f := &filamentmodels.Filament{VendorID: &v.ID, Density: 1.24, Diameter: 1.75}
	s.Require().NoError(s.filaments.Create(s.ctx, f))
	return f.ID
}

func (s *CostStoreSuite) cost(printerID, filamentID *int64, price float64) *models.CostCalculation {
	c := &models.CostCalculation{PrinterID: printerID, FilamentID: filamentID, FinalPrice: &price, Created: time.Now().UTC()}
	s.Require().NoError(s.costs.Create(s.ctx, c))
	return c
}

func (s *CostStoreSuite) TestHydratesTwoLevels() {
	c := s.cost(ptr(s.printer("MK4")), ptr(s.filament("Prusament")), 12)

	found, err := s.costs.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Printer)
	s.Equal("MK4", found.Printer.Name)
	s.Require().NotNil(found.Filament)
	s.Require().NotNil(found.Filament.Vendor)
	s.Equal("Prusament", found.Filament.Vendor.Name)
}

func (s *CostStoreSuite) TestDeletedPrinterReadsAsAbsent() {
	printerID := s.printer("MK4")
	c := s.cost(&printerID, nil, 5)
	s.Require().NoError(s.printers.Delete(s.ctx, printerID))

	found, err := s.costs.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Nil(found.PrinterID)
	s.Nil(found.Printer)
}

func (s *CostStoreSuite) TestFindAcrossRelations() {
	mk4 := s.printer("MK4")
	x1c := s.printer("X1C")
	s.cost(&mk4, ptr(s.filament("Polymaker")), 30)
	s.cost(&x1c, ptr(s.filament("Prusament")), 10)
	s.cost(nil, nil, 20)

	s.Run("printer ids with absent", func() {
		ids, err := query.ParseIDs(strconv.FormatInt(x1c, 10) + ",-1")
		s.Require().NoError(err)
		res, err := s.costs.Find(s.ctx, query.New(models.Table).WhereIDs("printer_id", ids))
		s.Require().NoError(err)
		s.Equal(2, res.TotalCount)
	})

	s.Run("sort by vendor name descending puts absent first", func() {
		keys, err := query.ParseSort("filament.vendor.name:desc")
		s.Require().NoError(err)
		res, err := s.costs.Find(s.ctx, query.New(models.Table).OrderBy(keys...))
		s.Require().NoError(err)
		s.Require().Len(res.Items, 3)
		s.Equal([]float64{20, 10, 30}, []float64{*res.Items[0].FinalPrice, *res.Items[1].FinalPrice, *res.Items[2].FinalPrice})
	})

	s.Run("paged count", func() {
		keys, err := query.ParseSort("final_price:asc")
		s.Require().NoError(err)
		limit := 1
		res, err := s.costs.Find(s.ctx, query.New(models.Table).OrderBy(keys...).Paginate(query.Page{Limit: &limit, Offset: 1}))
		s.Require().NoError(err)
		s.Equal(3, res.TotalCount)
		s.Require().Len(res.Items, 1)
		s.Equal(20.0, *res.Items[0].FinalPrice)
	})
}

func (s *CostStoreSuite) TestUpdateAndDelete() {
	c := s.cost(nil, nil, 5)
	c.PrinterID = ptr(s.printer("Voron"))
	s.Require().NoError(s.costs.Update(s.ctx, c))
	s.Require().NotNil(c.Printer)
	s.Equal("Voron", c.Printer.Name)

	s.Require().NoError(s.costs.Delete(s.ctx, c.ID))
	s.Zero(s.costs.Count())
	s.ErrorIs(s.costs.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
}
