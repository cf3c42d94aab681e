package service

import (
	"context"

	"spoolman/internal/filament/models"
	"spoolman/internal/platform/tracing"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
)

// VendorService manages vendors.
type VendorService struct {
	config
	vendors VendorStore
}

// NewVendorService returns a vendor service backed by vendors.
func NewVendorService(vendors VendorStore, opts ...Option) *VendorService {
	return &VendorService{config: newConfig(opts), vendors: vendors}
}

func (s *VendorService) Create(ctx context.Context, req *models.CreateVendorRequest) (_ *models.Vendor, err error) {
	ctx, span := tracing.Start(ctx, "vendor.Create")
	defer tracing.End(span, &err)

	v := &models.Vendor{Registered: s.now(), Name: req.Name, Comment: req.Comment}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create vendor")
	}
	s.changed(ctx, pubsub.EventAdded, models.VendorResource, v.ID, v)
	return v, nil
}

func (s *VendorService) Get(ctx context.Context, id int64) (_ *models.Vendor, err error) {
	ctx, span := tracing.Start(ctx, "vendor.Get", tracing.ID(id))
	defer tracing.End(span, &err)

	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, models.VendorResource, id)
	}
	return v, nil
}

func (s *VendorService) Find(ctx context.Context, f models.VendorFilter, opts query.Options) (_ query.Result[models.Vendor], err error) {
	ctx, span := tracing.Start(ctx, "vendor.Find")
	defer tracing.End(span, &err)

	q := query.New(models.VendorTable)
	if f.Name != nil {
		q = q.WhereTerms("name", query.ParseTerms(*f.Name))
	}
	q = q.With(opts)
	if err := q.Err(); err != nil {
		return query.Result[models.Vendor]{}, query.AsDomainError(err)
	}
	res, err := s.vendors.Find(ctx, q)
	if err != nil {
		return query.Result[models.Vendor]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find vendors")
	}
	return res, nil
}

func (s *VendorService) Update(ctx context.Context, id int64, req *models.UpdateVendorRequest) (_ *models.Vendor, err error) {
	ctx, span := tracing.Start(ctx, "vendor.Update", tracing.ID(id))
	defer tracing.End(span, &err)

	var updated *models.Vendor
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.vendors.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, models.VendorResource, id)
		}
		req.Apply(v)
		if err := s.vendors.Update(txCtx, v); err != nil {
			return wrapStoreErr(err, models.VendorResource, id)
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, pubsub.EventUpdated, models.VendorResource, id, updated)
	return updated, nil
}

func (s *VendorService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "vendor.Delete", tracing.ID(id))
	defer tracing.End(span, &err)

	var deleted *models.Vendor
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.vendors.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, models.VendorResource, id)
		}
		if err := s.vendors.Delete(txCtx, id); err != nil {
			return wrapStoreErr(err, models.VendorResource, id)
		}
		deleted = v
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx, pubsub.EventDeleted, models.VendorResource, id, deleted)
	return nil
}
