// Package models defines vendors and the filaments they sell.
package models

import (
	"time"

	"spoolman/internal/query"
)

const (
	VendorResource   = "vendor"
	FilamentResource = "filament"
)

type Vendor struct {
	ID         int64     `json:"id"`
	Registered time.Time `json:"registered"`
	Name       string    `json:"name"`
	Comment    *string   `json:"comment,omitempty"`
}

// Filament is a filament product. Vendor is populated on reads when VendorID
// names an existing vendor.
type Filament struct {
	ID         int64     `json:"id"`
	Registered time.Time `json:"registered"`
	Name       *string   `json:"name,omitempty"`
	VendorID   *int64    `json:"vendor_id,omitempty"`
	Vendor     *Vendor   `json:"vendor,omitempty"`
	Material   *string   `json:"material,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Weight     *float64  `json:"weight,omitempty"`
	Density    float64   `json:"density"`
	Diameter   float64   `json:"diameter"`
	Comment    *string   `json:"comment,omitempty"`
}

var VendorTable = query.NewTable[Vendor]("vendor", "vendor", "id").
	Int("id", func(v *Vendor) int64 { return v.ID }).
	Time("registered", func(v *Vendor) time.Time { return v.Registered }).
	String("name", func(v *Vendor) string { return v.Name }).
	OptString("comment", func(v *Vendor) *string { return v.Comment }).
	MustValidate()

var FilamentTable = query.Embed(
	query.NewTable[Filament]("filament", "filament", "id").
		Int("id", func(f *Filament) int64 { return f.ID }).
		Time("registered", func(f *Filament) time.Time { return f.Registered }).
		OptString("name", func(f *Filament) *string { return f.Name }).
		Ref("vendor_id", func(f *Filament) *int64 { return f.VendorID }).
		OptString("material", func(f *Filament) *string { return f.Material }).
		Float("price", func(f *Filament) *float64 { return f.Price }).
		Float("weight", func(f *Filament) *float64 { return f.Weight }).
		Float("density", func(f *Filament) *float64 { return &f.Density }).
		Float("diameter", func(f *Filament) *float64 { return &f.Diameter }).
		OptString("comment", func(f *Filament) *string { return f.Comment }),
	"vendor", func(f *Filament) *Vendor { return f.Vendor }, VendorTable,
).MustValidate()

type VendorFilter struct {
	Name *string
}

// FilamentFilter holds the raw find parameters for filaments. VendorID is a
// comma-separated id list where -1 matches filaments without a vendor.
type FilamentFilter struct {
	Name     *string
	Material *string
	VendorID *string
}
