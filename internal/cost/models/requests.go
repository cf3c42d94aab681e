package models

import (
	"time"

	dErrors "spoolman/pkg/domain-errors"
)

const (
	maxCurrencyLength  = 8
	maxItemNamesLength = 512
	maxNotesLength     = 1024
)

// CreateRequest is the body of POST /cost. Every field is optional.
type CreateRequest struct {
	PrinterID        *int64   `json:"printer_id"`
	FilamentID       *int64   `json:"filament_id"`
	PrintTimeHours   *float64 `json:"print_time_hours"`
	LaborTimeHours   *float64 `json:"labor_time_hours"`
	FilamentWeightG  *float64 `json:"filament_weight_g"`
	MaterialCost     *float64 `json:"material_cost"`
	EnergyCost       *float64 `json:"energy_cost"`
	EnergyCostPerKWh *float64 `json:"energy_cost_per_kwh"`
	DepreciationCost *float64 `json:"depreciation_cost"`
	LaborCost        *float64 `json:"labor_cost"`
	LaborCostPerHour *float64 `json:"labor_cost_per_hour"`
	ConsumablesCost  *float64 `json:"consumables_cost"`
	FailureRate      *float64 `json:"failure_rate"`
	MarkupRate       *float64 `json:"markup_rate"`
	BasePrice        *float64 `json:"base_price"`
	UpliftedPrice    *float64 `json:"uplifted_price"`
	FinalPrice       *float64 `json:"final_price"`
	Currency         *string  `json:"currency"`
	ItemNames        *string  `json:"item_names"`
	Notes            *string  `json:"notes"`
}

// UpdateRequest is the body of PATCH /cost/{id}. Absent and null fields keep
// their stored value.
type UpdateRequest CreateRequest

func (r *CreateRequest) figures() []*float64 {
	return []*float64{
		r.PrintTimeHours, r.LaborTimeHours, r.FilamentWeightG,
		r.MaterialCost, r.EnergyCost, r.EnergyCostPerKWh,
		r.DepreciationCost, r.LaborCost, r.LaborCostPerHour,
		r.ConsumablesCost, r.FailureRate, r.MarkupRate,
		r.BasePrice, r.UpliftedPrice, r.FinalPrice,
	}
}

func (r *CreateRequest) Validate() error {
	for i, v := range r.figures() {
		if v != nil && *v < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "%s must be >= 0", FigureNames[i])
		}
	}
	for _, id := range []struct {
		name  string
		value *int64
	}{{"printer_id", r.PrinterID}, {"filament_id", r.FilamentID}} {
		if id.value != nil && *id.value <= 0 {
			return dErrors.Newf(dErrors.CodeValidation, "%s must be positive", id.name)
		}
	}
	if r.Currency != nil && len(*r.Currency) > maxCurrencyLength {
		return dErrors.Newf(dErrors.CodeValidation, "currency must be at most %d characters", maxCurrencyLength)
	}
	if r.ItemNames != nil && len(*r.ItemNames) > maxItemNamesLength {
		return dErrors.Newf(dErrors.CodeValidation, "item_names must be at most %d characters", maxItemNamesLength)
	}
	if r.Notes != nil && len(*r.Notes) > maxNotesLength {
		return dErrors.Newf(dErrors.CodeValidation, "notes must be at most %d characters", maxNotesLength)
	}
	return nil
}

// Calculation builds the new row.
func (r *CreateRequest) Calculation(created time.Time) *CostCalculation {
	c := &CostCalculation{Created: created}
	(*UpdateRequest)(r).Apply(c)
	return c
}

func (r *UpdateRequest) Validate() error {
	return (*CreateRequest)(r).Validate()
}

// Apply copies the set fields onto c. Changed relations are reset and are
// hydrated again when c is read back.
func (r *UpdateRequest) Apply(c *CostCalculation) {
	if r.PrinterID != nil {
		c.PrinterID = r.PrinterID
		c.Printer = nil
	}
	if r.FilamentID != nil {
		c.FilamentID = r.FilamentID
		c.Filament = nil
	}
	dst := c.Figures()
	for i, v := range (*CreateRequest)(r).figures() {
		if v != nil {
			*dst[i] = v
		}
	}
	if r.Currency != nil {
		c.Currency = r.Currency
	}
	if r.ItemNames != nil {
		c.ItemNames = r.ItemNames
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
}
