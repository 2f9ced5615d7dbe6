package genestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/varlab/genomecache/genomics"
)

// BasicGeneStore is the plain repository variant: one query per concern,
// full-row selects, aggregation computed in process. It is the wiring target
// for OPTIMIZATION_LEVEL=basic and the behavioral baseline the optimized
// variants are checked against.
type BasicGeneStore struct {
	db *bun.DB
}

// NewBasicGeneStore wraps db.
func NewBasicGeneStore(db *bun.DB) *BasicGeneStore {
	return &BasicGeneStore{db: db}
}

func (s *BasicGeneStore) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[genomics.GeneRecord], error) {
	page = page.Normalize()

	var records []genomics.GeneRecord
	err := applyGeneFilter(s.db.NewSelect().Model(&records), filter).
		Order("g.chromosome ASC", "g.start_pos ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(ctx)
	if err != nil {
		return genomics.Page[genomics.GeneRecord]{}, err
	}

	total, err := s.Count(ctx, filter)
	if err != nil {
		return genomics.Page[genomics.GeneRecord]{}, err
	}

	return genomics.Page[genomics.GeneRecord]{
		Records: records,
		Total:   total,
		Offset:  page.Offset,
		Limit:   page.Limit,
	}, nil
}

func (s *BasicGeneStore) GetByID(ctx context.Context, id string) (genomics.GeneRecord, error) {
	var record genomics.GeneRecord
	err := s.db.NewSelect().Model(&record).Where("g.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return genomics.GeneRecord{}, &genomics.NotFoundError{Kind: "gene", ID: id}
		}
		return genomics.GeneRecord{}, err
	}
	return record, nil
}

func (s *BasicGeneStore) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	return applyGeneFilter(s.db.NewSelect().Model((*genomics.GeneRecord)(nil)), filter).Count(ctx)
}

// AggregateStatistics scans every matching row and aggregates in process.
// Correct but heavy; the optimized variant pushes this into SQL.
func (s *BasicGeneStore) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	var records []genomics.GeneRecord
	err := applyGeneFilter(s.db.NewSelect().Model(&records), filter).Scan(ctx)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	stats := genomics.AggregateStats{
		TotalRecords: len(records),
		CountsByKey:  make(map[string]int),
	}
	for i, r := range records {
		stats.CountsByKey[r.Chromosome]++
		if i == 0 || r.StartPos < stats.MinPosition {
			stats.MinPosition = r.StartPos
		}
		if r.EndPos > stats.MaxPosition {
			stats.MaxPosition = r.EndPos
		}
	}
	return stats, nil
}

// BasicVariantStore is the plain variant repository. Same shape as
// BasicGeneStore with variant filters and significance grouping.
type BasicVariantStore struct {
	db *bun.DB
}

// NewBasicVariantStore wraps db.
func NewBasicVariantStore(db *bun.DB) *BasicVariantStore {
	return &BasicVariantStore{db: db}
}

func (s *BasicVariantStore) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[genomics.VariantRecord], error) {
	page = page.Normalize()

	var records []genomics.VariantRecord
	err := applyVariantFilter(s.db.NewSelect().Model(&records), filter).
		Order("v.chromosome ASC", "v.position ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(ctx)
	if err != nil {
		return genomics.Page[genomics.VariantRecord]{}, err
	}

	total, err := s.Count(ctx, filter)
	if err != nil {
		return genomics.Page[genomics.VariantRecord]{}, err
	}

	return genomics.Page[genomics.VariantRecord]{
		Records: records,
		Total:   total,
		Offset:  page.Offset,
		Limit:   page.Limit,
	}, nil
}

func (s *BasicVariantStore) GetByID(ctx context.Context, id string) (genomics.VariantRecord, error) {
	var record genomics.VariantRecord
	err := s.db.NewSelect().Model(&record).Where("v.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return genomics.VariantRecord{}, &genomics.NotFoundError{Kind: "variant", ID: id}
		}
		return genomics.VariantRecord{}, err
	}
	return record, nil
}

func (s *BasicVariantStore) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	return applyVariantFilter(s.db.NewSelect().Model((*genomics.VariantRecord)(nil)), filter).Count(ctx)
}

func (s *BasicVariantStore) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	var records []genomics.VariantRecord
	err := applyVariantFilter(s.db.NewSelect().Model(&records), filter).Scan(ctx)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	stats := genomics.AggregateStats{
		TotalRecords: len(records),
		CountsByKey:  make(map[string]int),
	}
	for i, r := range records {
		stats.CountsByKey[r.Significance]++
		if i == 0 || r.Position < stats.MinPosition {
			stats.MinPosition = r.Position
		}
		if r.Position > stats.MaxPosition {
			stats.MaxPosition = r.Position
		}
	}
	return stats, nil
}
