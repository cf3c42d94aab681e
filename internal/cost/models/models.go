// Package models defines cost calculations. The arithmetic happens in the
// client; the service stores the figures it was given.
package models

import (
	"time"

	filament "spoolman/internal/filament/models"
	printer "spoolman/internal/printer/models"
	"spoolman/internal/query"
)

const Resource = "cost"

// CostCalculation is a saved quote. Printer and Filament are populated on
// reads when their ids name existing rows.
type CostCalculation struct {
	ID               int64              `json:"id"`
	Created          time.Time          `json:"created"`
	PrinterID        *int64             `json:"printer_id,omitempty"`
	Printer          *printer.Printer   `json:"printer,omitempty"`
	FilamentID       *int64             `json:"filament_id,omitempty"`
	Filament         *filament.Filament `json:"filament,omitempty"`
	PrintTimeHours   *float64           `json:"print_time_hours,omitempty"`
	LaborTimeHours   *float64           `json:"labor_time_hours,omitempty"`
	FilamentWeightG  *float64           `json:"filament_weight_g,omitempty"`
	MaterialCost     *float64           `json:"material_cost,omitempty"`
	EnergyCost       *float64           `json:"energy_cost,omitempty"`
	EnergyCostPerKWh *float64           `json:"energy_cost_per_kwh,omitempty"`
	DepreciationCost *float64           `json:"depreciation_cost,omitempty"`
	LaborCost        *float64           `json:"labor_cost,omitempty"`
	LaborCostPerHour *float64           `json:"labor_cost_per_hour,omitempty"`
	ConsumablesCost  *float64           `json:"consumables_cost,omitempty"`
	FailureRate      *float64           `json:"failure_rate,omitempty"`
	MarkupRate       *float64           `json:"markup_rate,omitempty"`
	BasePrice        *float64           `json:"base_price,omitempty"`
	UpliftedPrice    *float64           `json:"uplifted_price,omitempty"`
	FinalPrice       *float64           `json:"final_price,omitempty"`
	Currency         *string            `json:"currency,omitempty"`
	ItemNames        *string            `json:"item_names,omitempty"`
	Notes            *string            `json:"notes,omitempty"`
}

// Figures lists the numeric fields in column order. The pointers alias c.
func (c *CostCalculation) Figures() []**float64 {
	return []**float64{
		&c.PrintTimeHours, &c.LaborTimeHours, &c.FilamentWeightG,
		&c.MaterialCost, &c.EnergyCost, &c.EnergyCostPerKWh,
		&c.DepreciationCost, &c.LaborCost, &c.LaborCostPerHour,
		&c.ConsumablesCost, &c.FailureRate, &c.MarkupRate,
		&c.BasePrice, &c.UpliftedPrice, &c.FinalPrice,
	}
}

// FigureNames are the JSON and column names of Figures, in the same order.
var FigureNames = []string{
	"print_time_hours", "labor_time_hours", "filament_weight_g",
	"material_cost", "energy_cost", "energy_cost_per_kwh",
	"depreciation_cost", "labor_cost", "labor_cost_per_hour",
	"consumables_cost", "failure_rate", "markup_rate",
	"base_price", "uplifted_price", "final_price",
}

var Table = buildTable()

func buildTable() *query.Table[CostCalculation] {
	t := query.NewTable[CostCalculation]("cost", "cost_calculation", "id").
		Int("id", func(c *CostCalculation) int64 { return c.ID }).
		Time("created", func(c *CostCalculation) time.Time { return c.Created }).
		Ref("printer_id", func(c *CostCalculation) *int64 { return c.PrinterID }).
		Ref("filament_id", func(c *CostCalculation) *int64 { return c.FilamentID })
	for i, name := range FigureNames {
		t = t.Float(name, func(c *CostCalculation) *float64 { return *c.Figures()[i] })
	}
	t = t.OptString("currency", func(c *CostCalculation) *string { return c.Currency }).
		OptString("item_names", func(c *CostCalculation) *string { return c.ItemNames }).
		OptString("notes", func(c *CostCalculation) *string { return c.Notes })
	t = query.Embed(t, "printer", func(c *CostCalculation) *printer.Printer { return c.Printer }, printer.Table)
	t = query.Embed(t, "filament", func(c *CostCalculation) *filament.Filament { return c.Filament }, filament.FilamentTable)
	return t.MustValidate()
}

// Filter holds the raw find parameters for cost calculations: comma-separated
// id lists where -1 matches calculations without the relation.
type Filter struct {
	PrinterID  *string
	FilamentID *string
}
