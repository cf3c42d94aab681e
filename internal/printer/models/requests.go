package models

import (
	"strings"

	dErrors "spoolman/pkg/domain-errors"
	"spoolman/pkg/platform/httputil"
)

const (
	maxNameLength    = 128
	maxCommentLength = 1024
)

// CreateRequest is the body of POST /printer.
type CreateRequest struct {
	Name                    string   `json:"name"`
	PowerWatts              *float64 `json:"power_watts"`
	DepreciationCostPerHour *float64 `json:"depreciation_cost_per_hour"`
	Comment                 *string  `json:"comment"`
}

func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return validateFields(&r.Name, r.PowerWatts, r.DepreciationCostPerHour, r.Comment)
}

// UpdateRequest is the body of PATCH /printer/{id}. Absent or null fields
// keep their stored value, except name, which may not be null.
type UpdateRequest struct {
	Name                    *string  `json:"name"`
	PowerWatts              *float64 `json:"power_watts"`
	DepreciationCostPerHour *float64 `json:"depreciation_cost_per_hour"`
	Comment                 *string  `json:"comment"`

	nameNull bool
}

func (r *UpdateRequest) UnmarshalJSON(b []byte) error {
	nulls, err := httputil.NullKeys(b, "name")
	if err != nil {
		return err
	}
	type plain UpdateRequest
	if err := httputil.DecodeStrict(b, (*plain)(r)); err != nil {
		return err
	}
	r.nameNull = nulls["name"]
	return nil
}

func (r *UpdateRequest) Validate() error {
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
	return validateFields(r.Name, r.PowerWatts, r.DepreciationCostPerHour, r.Comment)
}

// Apply copies the set fields onto p.
func (r *UpdateRequest) Apply(p *Printer) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.PowerWatts != nil {
		p.PowerWatts = r.PowerWatts
	}
	if r.DepreciationCostPerHour != nil {
		p.DepreciationCostPerHour = r.DepreciationCostPerHour
	}
	if r.Comment != nil {
		p.Comment = r.Comment
	}
}

func validateFields(name *string, power, depreciation *float64, comment *string) error {
	if name != nil && len(*name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	if power != nil && *power < 0 {
		return dErrors.New(dErrors.CodeValidation, "power_watts must be >= 0")
	}
	if depreciation != nil && *depreciation < 0 {
		return dErrors.New(dErrors.CodeValidation, "depreciation_cost_per_hour must be >= 0")
	}
	if comment != nil && len(*comment) > maxCommentLength {
		return dErrors.Newf(dErrors.CodeValidation, "comment must be at most %d characters", maxCommentLength)
	}
	return nil
}
