package listing

import (
	"math"

	"github.com/hopus-ml/hopus/frame"
)

// Raw column names produced by ToFrame.
const (
	IDColumn               = "id"
	FormattedAddressColumn = "formattedAddress"
	AddressLine1Column     = "addressLine1"
	AddressLine2Column     = "addressLine2"
	CityColumn             = "city"
	StateColumn            = "state"
	ZipCodeColumn          = "zipCode"
	CountyColumn           = "county"
	LatitudeColumn         = "latitude"
	LongitudeColumn        = "longitude"
	PropertyTypeColumn     = "propertyType"
	BedroomsColumn         = "bedrooms"
	BathroomsColumn        = "bathrooms"
	SquareFootageColumn    = "squareFootage"
	LotSizeColumn          = "lotSize"
	YearBuiltColumn        = "yearBuilt"
	AssessorIDColumn       = "assessorID"
	LegalDescriptionColumn = "legalDescription"
	SubdivisionColumn      = "subdivision"
	ZoningColumn           = "zoning"
	LastSaleDateColumn     = "lastSaleDate"
	LastSalePriceColumn    = "lastSalePrice"
	OwnerOccupiedColumn    = "ownerOccupied"
)

// SingleFamily is the propertyType kept by preprocessing.
const SingleFamily = "Single Family"

// Table is a frame of scalar listing fields plus the nested features object
// of each row, kept aside until it is expanded into columns.
type Table struct {
	Frame    *frame.Frame
	Features []map[string]any
}

// Len returns the number of listings.
func (t *Table) Len() int { return t.Frame.Len() }

// Take returns the given rows, keeping Features aligned with the frame.
func (t *Table) Take(indices []int) *Table {
	features := make([]map[string]any, len(indices))
	for i, idx := range indices {
		features[i] = t.Features[idx]
	}
	return &Table{Frame: t.Frame.Take(indices), Features: features}
}

// DropRows removes rows for which drop returns true and reports how many
// were removed.
func (t *Table) DropRows(drop func(row int) bool) (*Table, int) {
	indices := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if !drop(i) {
			indices = append(indices, i)
		}
	}
	return t.Take(indices), t.Len() - len(indices)
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// ToFrame flattens properties into a Table. Missing numbers become NaN and
// missing text becomes "".
func ToFrame(props []Property) *Table {
	n := len(props)
	text := func(get func(p *Property) string) []string {
		out := make([]string, n)
		for i := range props {
			out[i] = get(&props[i])
		}
		return out
	}
	num := func(get func(p *Property) *float64) []float64 {
		out := make([]float64, n)
		for i := range props {
			out[i] = value(get(&props[i]))
		}
		return out
	}

	occupied := make([]float64, n)
	features := make([]map[string]any, n)
	for i := range props {
		occupied[i] = math.NaN()
		if o := props[i].OwnerOccupied; o != nil {
			occupied[i] = 0
			if *o {
				occupied[i] = 1
			}
		}
		features[i] = props[i].Features
	}

	f := frame.New()
	// lengths all equal n, so the adds cannot fail
	_ = f.AddString(IDColumn, text(func(p *Property) string { return p.ID }))
	_ = f.AddString(FormattedAddressColumn, text(func(p *Property) string { return p.FormattedAddress }))
	_ = f.AddString(AddressLine1Column, text(func(p *Property) string { return p.AddressLine1 }))
	_ = f.AddString(AddressLine2Column, text(func(p *Property) string { return p.AddressLine2 }))
	_ = f.AddString(CityColumn, text(func(p *Property) string { return p.City }))
	_ = f.AddString(StateColumn, text(func(p *Property) string { return p.State }))
	_ = f.AddString(ZipCodeColumn, text(func(p *Property) string { return p.ZipCode }))
	_ = f.AddString(CountyColumn, text(func(p *Property) string { return p.County }))
	_ = f.AddFloat(LatitudeColumn, num(func(p *Property) *float64 { return p.Latitude }))
	_ = f.AddFloat(LongitudeColumn, num(func(p *Property) *float64 { return p.Longitude }))
	_ = f.AddString(PropertyTypeColumn, text(func(p *Property) string { return p.PropertyType }))
	_ = f.AddFloat(BedroomsColumn, num(func(p *Property) *float64 { return p.Bedrooms }))
	_ = f.AddFloat(BathroomsColumn, num(func(p *Property) *float64 { return p.Bathrooms }))
	_ = f.AddFloat(SquareFootageColumn, num(func(p *Property) *float64 { return p.SquareFootage }))
	_ = f.AddFloat(LotSizeColumn, num(func(p *Property) *float64 { return p.LotSize }))
	_ = f.AddFloat(YearBuiltColumn, num(func(p *Property) *float64 { return p.YearBuilt }))
	_ = f.AddString(AssessorIDColumn, text(func(p *Property) string { return p.AssessorID }))
	_ = f.AddString(LegalDescriptionColumn, text(func(p *Property) string { return p.LegalDescription }))
	_ = f.AddString(SubdivisionColumn, text(func(p *Property) string { return p.Subdivision }))
	_ = f.AddString(ZoningColumn, text(func(p *Property) string { return p.Zoning }))
	_ = f.AddString(LastSaleDateColumn, text(func(p *Property) string { return p.LastSaleDate }))
	_ = f.AddFloat(LastSalePriceColumn, num(func(p *Property) *float64 { return p.LastSalePrice }))
	_ = f.AddFloat(OwnerOccupiedColumn, occupied)

	return &Table{Frame: f, Features: features}
}
