package models

import (
	"strings"

	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/httputil"
)

const (
	maxNameLength     = 64
	maxMaterialLength = 64
	maxCommentLength  = 1024
)

type CreateVendorRequest struct {
	Name    string  `json:"name"`
	Comment *string `json:"comment"`
}

func (r *CreateVendorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return validateVendor(&r.Name, r.Comment)
}

// UpdateVendorRequest is the body of PATCH /vendor/{id}. name may be omitted
// but not null.
type UpdateVendorRequest struct {
	Name    *string `json:"name"`
	Comment *string `json:"comment"`

	nameNull bool
}

func (r *UpdateVendorRequest) UnmarshalJSON(b []byte) error {
	nulls, err := httputil.NullKeys(b, "name")
	if err != nil {
		return err
	}
	type plain UpdateVendorRequest
	if err := httputil.DecodeStrict(b, (*plain)(r)); err != nil {
		return err
	}
	r.nameNull = nulls["name"]
	return nil
}

func (r *UpdateVendorRequest) Validate() error {
	if r.nameNull {
		return dErrors.New(dErrors.CodeValidation, "name must not be null")
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "name must not be empty")
		}
		r.Name = &trimmed
	}
	return validateVendor(r.Name, r.Comment)
}

func (r *UpdateVendorRequest) Apply(v *Vendor) {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Comment != nil {
		v.Comment = r.Comment
	}
}

func validateVendor(name, comment *string) error {
	if name != nil && len(*name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	if comment != nil && len(*comment) > maxCommentLength {
		return dErrors.Newf(dErrors.CodeValidation, "comment must be at most %d characters", maxCommentLength)
	}
	return nil
}

type CreateFilamentRequest struct {
	Name     *string  `json:"name"`
	VendorID *int64   `json:"vendor_id"`
	Material *string  `json:"material"`
	Price    *float64 `json:"price"`
	Weight   *float64 `json:"weight"`
	Density  float64  `json:"density"`
	Diameter float64  `json:"diameter"`
	Comment  *string  `json:"comment"`
}

func (r *CreateFilamentRequest) Validate() error {
	if r.Density <= 0 {
		return dErrors.New(dErrors.CodeValidation, "density must be > 0")
	}
	if r.Diameter <= 0 {
		return dErrors.New(dErrors.CodeValidation, "diameter must be > 0")
	}
	return validateFilament(r.Name, r.VendorID, r.Material, r.Price, r.Weight, r.Comment)
}

// UpdateFilamentRequest is the body of PATCH /filament/{id}. vendor_id: null
// detaches the vendor; density and diameter may not be null.
type UpdateFilamentRequest struct {
	Name     *string  `json:"name"`
	VendorID *int64   `json:"vendor_id"`
	Material *string  `json:"material"`
	Price    *float64 `json:"price"`
	Weight   *float64 `json:"weight"`
	Density  *float64 `json:"density"`
	Diameter *float64 `json:"diameter"`
	Comment  *string  `json:"comment"`

	nulls map[string]bool
}

func (r *UpdateFilamentRequest) UnmarshalJSON(b []byte) error {
	nulls, err := httputil.NullKeys(b, "vendor_id", "density", "diameter")
	if err != nil {
		return err
	}
	type plain UpdateFilamentRequest
	if err := httputil.DecodeStrict(b, (*plain)(r)); err != nil {
		return err
	}
	r.nulls = nulls
	return nil
}

// ClearsVendor reports whether the request detaches the vendor.
func (r *UpdateFilamentRequest) ClearsVendor() bool {
	return r.nulls["vendor_id"]
}

func (r *UpdateFilamentRequest) Validate() error {
	for _, k := range []string{"density", "diameter"} {
		if r.nulls[k] {
			return dErrors.Newf(dErrors.CodeValidation, "%s must not be null", k)
		}
	}
	if r.Density != nil && *r.Density <= 0 {
		return dErrors.New(dErrors.CodeValidation, "density must be > 0")
	}
	if r.Diameter != nil && *r.Diameter <= 0 {
		return dErrors.New(dErrors.CodeValidation, "diameter must be > 0")
	}
	return validateFilament(r.Name, r.VendorID, r.Material, r.Price, r.Weight, r.Comment)
}

// Apply copies the set fields onto f. The vendor relation is reset and is
// hydrated again when f is read back.
func (r *UpdateFilamentRequest) Apply(f *Filament) {
	if r.Name != nil {
		f.Name = r.Name
	}
	if r.ClearsVendor() {
		f.VendorID = nil
		f.Vendor = nil
	} else if r.VendorID != nil {
		f.VendorID = r.VendorID
		f.Vendor = nil
	}
	if r.Material != nil {
		f.Material = r.Material
	}
	if r.Price != nil {
		f.Price = r.Price
	}
	if r.Weight != nil {
		f.Weight = r.Weight
	}
	if r.Density != nil {
		f.Density = *r.Density
	}
	if r.Diameter != nil {
		f.Diameter = *r.Diameter
	}
	if r.Comment != nil {
		f.Comment = r.Comment
	}
}

func validateFilament(name *string, vendorID *int64, material *string, price, weight *float64, comment *string) error {
	if name != nil && len(*name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	if vendorID != nil && *vendorID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "vendor_id must be positive")
	}
	if material != nil && len(*material) > maxMaterialLength {
		return dErrors.Newf(dErrors.CodeValidation, "material must be at most %d characters", maxMaterialLength)
	}
	if price != nil && *price < 0 {
		return dErrors.New(dErrors.CodeValidation, "price must be >= 0")
	}
	if weight != nil && *weight < 0 {
		return dErrors.New(dErrors.CodeValidation, "weight must be >= 0")
	}
	if comment != nil && len(*comment) > maxCommentLength {
		return dErrors.Newf(dErrors.CodeValidation, "comment must be at most %d characters", maxCommentLength)
	}
	return nil
}
