// Package model defines the permit record types shared across the
// deduplication and scoring pipeline.
package model

// Coordinates is a geocoded point attached to a record by an upstream
// geocoding step. The pipeline only consumes coordinates; it never
// performs lookups itself.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Enrichment holds the result of an external registry verification lookup.
type Enrichment struct {
	Verified bool `json:"verified"`
}

// Record is a single permit-like entity ingested from a government data
// source. Immutable once ingested except for the enrichment fields the
// pipeline itself adds (Score, MergedWith, HighQuality, composite
// DataSource).
type Record struct {
	ID          string          `json:"id"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Description string          `json:"description,omitempty"`
	PermitType  string          `json:"permit_type,omitempty"`
	Valuation   float64         `json:"valuation"`
	AppliedDate string          `json:"applied_date"`
	DataSource  string          `json:"data_source"`
	Coordinates *Coordinates    `json:"coordinates,omitempty"`
	Class       *Classification `json:"classification,omitempty"`
	Enrichment  *Enrichment     `json:"enrichment,omitempty"`

	// Derived by the pipeline.
	Score       *int     `json:"score,omitempty"`
	HighQuality bool     `json:"high_quality,omitempty"`
	MergedWith  []string `json:"merged_with,omitempty"`
}

// HasCoordinates reports whether a prior geocoding step populated the
// record's location.
func (r *Record) HasCoordinates() bool {
	return r.Coordinates != nil
}
