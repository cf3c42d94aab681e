package models

import (
	"time"

	"spoolman/internal/query"
)

// Resource names printer events and topics.
const Resource = "printer"

// Printer is a 3D printer whose power draw and depreciation feed cost
// calculations.
type Printer struct {
	ID                      int64     `json:"id"`
	Registered              time.Time `json:"registered"`
	Name                    string    `json:"name"`
	PowerWatts              *float64  `json:"power_watts,omitempty"`
	DepreciationCostPerHour *float64  `json:"depreciation_cost_per_hour,omitempty"`
	Comment                 *string   `json:"comment,omitempty"`
}

// Table is the queryable field table of Printer.
var Table = query.NewTable[Printer]("printer", "printer", "id").
	Int("id", func(p *Printer) int64 { return p.ID }).
	Time("registered", func(p *Printer) time.Time { return p.Registered }).
	String("name", func(p *Printer) string { return p.Name }).
	Float("power_watts", func(p *Printer) *float64 { return p.PowerWatts }).
	Float("depreciation_cost_per_hour", func(p *Printer) *float64 { return p.DepreciationCostPerHour }).
	OptString("comment", func(p *Printer) *string { return p.Comment }).
	MustValidate()

// Filter holds the raw find parameters specific to printers.
type Filter struct {
	// Name is a comma-separated list of search terms; quoted terms match exactly.
	Name *string
}
