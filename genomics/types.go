package genomics

import (
	"time"

	"github.com/uptrace/bun"
)

// GeneRecord is a browsable gene annotation row.
type GeneRecord struct {
	bun.BaseModel `bun:"table:genes,alias:g"`

	ID         string    `json:"id" bun:"id,pk"`
	Symbol     string    `json:"symbol" bun:"symbol,notnull"`
	Name       string    `json:"name" bun:"name"`
	Chromosome string    `json:"chromosome" bun:"chromosome,notnull"`
	StartPos   int64     `json:"startPos" bun:"start_pos"`
	EndPos     int64     `json:"endPos" bun:"end_pos"`
	Strand     string    `json:"strand" bun:"strand"`
	Biotype    string    `json:"biotype" bun:"biotype"`
	UpdatedAt  time.Time `json:"updatedAt" bun:"updated_at"`
}

// VariantRecord is a single observed sequence variant.
type VariantRecord struct {
	bun.BaseModel `bun:"table:variants,alias:v"`

	ID           string    `json:"id" bun:"id,pk"`
	GeneID       string    `json:"geneId" bun:"gene_id"`
	Chromosome   string    `json:"chromosome" bun:"chromosome,notnull"`
	Position     int64     `json:"position" bun:"position"`
	Reference    string    `json:"reference" bun:"reference"`
	Alternate    string    `json:"alternate" bun:"alternate"`
	Significance string    `json:"significance" bun:"significance"`
	Frequency    float64   `json:"frequency" bun:"frequency"`
	UpdatedAt    time.Time `json:"updatedAt" bun:"updated_at"`
}

// SearchFilter narrows browse queries. Zero values mean "no constraint".
// Filters are value types so they serialize deterministically into cache keys.
type SearchFilter struct {
	Chromosome   string `json:"chromosome,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Biotype      string `json:"biotype,omitempty"`
	Significance string `json:"significance,omitempty"`
	MinPosition  int64  `json:"minPosition,omitempty"`
	MaxPosition  int64  `json:"maxPosition,omitempty"`
	Query        string `json:"query,omitempty"`
}

// PageRequest selects a result window.
type PageRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = 25
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page carries one window of records plus pagination metadata.
type Page[T any] struct {
	Records []T `json:"records"`
	Total   int `json:"total"`
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
}

// AggregateStats summarizes a filtered record set. Counts are keyed by the
// grouping value (chromosome for genes, clinical significance for variants).
type AggregateStats struct {
	TotalRecords int            `json:"totalRecords"`
	CountsByKey  map[string]int `json:"countsByKey"`
	MinPosition  int64          `json:"minPosition"`
	MaxPosition  int64          `json:"maxPosition"`
}
