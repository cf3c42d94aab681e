package service

import (
	"context"
	"errors"

	"spoolman/internal/filament/models"
	"spoolman/internal/platform/tracing"
	"spoolman/internal/pubsub"
	"spoolman/internal/query"
	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/sentinel"
)

// VendorLookup resolves the vendor a filament refers to.
type VendorLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Vendor, error)
}

// FilamentService manages filaments. Writes naming a vendor check that the
// vendor exists in the same unit of work.
type FilamentService struct {
	config
	filaments FilamentStore
	vendors   VendorLookup
}

// NewFilamentService returns a filament service. vendors resolves vendor ids.
func NewFilamentService(filaments FilamentStore, vendors VendorLookup, opts ...Option) *FilamentService {
	return &FilamentService{config: newConfig(opts), filaments: filaments, vendors: vendors}
}

func (s *FilamentService) Create(ctx context.Context, req *models.CreateFilamentRequest) (_ *models.Filament, err error) {
	ctx, span := tracing.Start(ctx, "filament.Create")
	defer tracing.End(span, &err)

	f := &models.Filament{
		Registered: s.now(),
		Name:       req.Name,
		VendorID:   req.VendorID,
		Material:   req.Material,
		Price:      req.Price,
		Weight:     req.Weight,
		Density:    req.Density,
		Diameter:   req.Diameter,
		Comment:    req.Comment,
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireVendor(txCtx, f.VendorID); err != nil {
			return err
		}
		if err := s.filaments.Create(txCtx, f); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return conflict(err)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create filament")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, pubsub.EventAdded, models.FilamentResource, f.ID, f)
	return f, nil
}

func (s *FilamentService) Get(ctx context.Context, id int64) (_ *models.Filament, err error) {
	ctx, span := tracing.Start(ctx, "filament.Get", tracing.ID(id))
	defer tracing.End(span, &err)

	f, err := s.filaments.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, models.FilamentResource, id)
	}
	return f, nil
}

func (s *FilamentService) Find(ctx context.Context, f models.FilamentFilter, opts query.Options) (_ query.Result[models.Filament], err error) {
	ctx, span := tracing.Start(ctx, "filament.Find")
	defer tracing.End(span, &err)

	q := query.New(models.FilamentTable)
	if f.Name != nil {
		q = q.WhereTerms("name", query.ParseTerms(*f.Name))
	}
	if f.Material != nil {
		q = q.WhereTerms("material", query.ParseTerms(*f.Material))
	}
	if f.VendorID != nil {
		ids, err := query.ParseIDs(*f.VendorID)
		if err != nil {
			return query.Result[models.Filament]{}, query.AsDomainError(err)
		}
		q = q.WhereIDs("vendor_id", ids)
	}
	q = q.With(opts)
	if err := q.Err(); err != nil {
		return query.Result[models.Filament]{}, query.AsDomainError(err)
	}
	res, err := s.filaments.Find(ctx, q)
	if err != nil {
		return query.Result[models.Filament]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find filaments")
	}
	return res, nil
}

func (s *FilamentService) Update(ctx context.Context, id int64, req *models.UpdateFilamentRequest) (_ *models.Filament, err error) {
	ctx, span := tracing.Start(ctx, "filament.Update", tracing.ID(id))
	defer tracing.End(span, &err)

	var updated *models.Filament
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.filaments.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, models.FilamentResource, id)
		}
		if err := s.requireVendor(txCtx, req.VendorID); err != nil {
			return err
		}
		req.Apply(f)
		if err := s.filaments.Update(txCtx, f); err != nil {
			return wrapStoreErr(err, models.FilamentResource, id)
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, pubsub.EventUpdated, models.FilamentResource, id, updated)
	return updated, nil
}

func (s *FilamentService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "filament.Delete", tracing.ID(id))
	defer tracing.End(span, &err)

	var deleted *models.Filament
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.filaments.FindByID(txCtx, id)
		if err != nil {
			return wrapStoreErr(err, models.FilamentResource, id)
		}
		if err := s.filaments.Delete(txCtx, id); err != nil {
			return wrapStoreErr(err, models.FilamentResource, id)
		}
		deleted = f
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx, pubsub.EventDeleted, models.FilamentResource, id, deleted)
	return nil
}

func (s *FilamentService) requireVendor(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.vendors.FindByID(ctx, *id); err != nil {
		return wrapStoreErr(err, models.VendorResource, *id)
	}
	return nil
}
