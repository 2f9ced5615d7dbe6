package genestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/varlab/genomecache/genomics"
)

// OptimizedGeneStore serves the same contract as BasicGeneStore with fewer
// round-trips: paged listing and total count share one ScanAndCount call,
// and aggregation runs as SQL instead of scanning rows into memory. Wired
// for OPTIMIZATION_LEVEL=optimized and full.
type OptimizedGeneStore struct {
	db *bun.DB
}

// NewOptimizedGeneStore wraps db.
func NewOptimizedGeneStore(db *bun.DB) *OptimizedGeneStore {
	return &OptimizedGeneStore{db: db}
}

func (s *OptimizedGeneStore) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[genomics.GeneRecord], error) {
	page = page.Normalize()

	var records []genomics.GeneRecord
	total, err := applyGeneFilter(s.db.NewSelect().Model(&records), filter).
		Column("g.id", "g.symbol", "g.name", "g.chromosome", "g.start_pos", "g.end_pos", "g.strand", "g.biotype").
		Order("g.chromosome ASC", "g.start_pos ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		ScanAndCount(ctx)
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

func (s *OptimizedGeneStore) GetByID(ctx context.Context, id string) (genomics.GeneRecord, error) {
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

func (s *OptimizedGeneStore) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	return applyGeneFilter(s.db.NewSelect().Model((*genomics.GeneRecord)(nil)), filter).Count(ctx)
}

func (s *OptimizedGeneStore) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	var groups []struct {
		Key   string `bun:"key"`
		Count int    `bun:"count"`
	}
	err := applyGeneFilter(s.db.NewSelect().Model((*genomics.GeneRecord)(nil)), filter).
		ColumnExpr("g.chromosome AS key").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("g.chromosome").
		Scan(ctx, &groups)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	var bounds struct {
		Total int   `bun:"total"`
		Min   int64 `bun:"min_pos"`
		Max   int64 `bun:"max_pos"`
	}
	err = applyGeneFilter(s.db.NewSelect().Model((*genomics.GeneRecord)(nil)), filter).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COALESCE(MIN(g.start_pos), 0) AS min_pos").
		ColumnExpr("COALESCE(MAX(g.end_pos), 0) AS max_pos").
		Scan(ctx, &bounds)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	stats := genomics.AggregateStats{
		TotalRecords: bounds.Total,
		CountsByKey:  make(map[string]int, len(groups)),
		MinPosition:  bounds.Min,
		MaxPosition:  bounds.Max,
	}
	for _, g := range groups {
		stats.CountsByKey[g.Key] = g.Count
	}
	return stats, nil
}

// OptimizedVariantStore mirrors OptimizedGeneStore for variants, grouping
// aggregates by clinical significance.
type OptimizedVariantStore struct {
	db *bun.DB
}

// NewOptimizedVariantStore wraps db.
func NewOptimizedVariantStore(db *bun.DB) *OptimizedVariantStore {
	return &OptimizedVariantStore{db: db}
}

func (s *OptimizedVariantStore) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[genomics.VariantRecord], error) {
	page = page.Normalize()

	var records []genomics.VariantRecord
	total, err := applyVariantFilter(s.db.NewSelect().Model(&records), filter).
		Column("v.id", "v.gene_id", "v.chromosome", "v.position", "v.reference", "v.alternate", "v.significance", "v.frequency").
		Order("v.chromosome ASC", "v.position ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		ScanAndCount(ctx)
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

func (s *OptimizedVariantStore) GetByID(ctx context.Context, id string) (genomics.VariantRecord, error) {
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

func (s *OptimizedVariantStore) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	return applyVariantFilter(s.db.NewSelect().Model((*genomics.VariantRecord)(nil)), filter).Count(ctx)
}

func (s *OptimizedVariantStore) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	var groups []struct {
		Key   string `bun:"key"`
		Count int    `bun:"count"`
	}
	err := applyVariantFilter(s.db.NewSelect().Model((*genomics.VariantRecord)(nil)), filter).
		ColumnExpr("v.significance AS key").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("v.significance").
		Scan(ctx, &groups)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	var bounds struct {
		Total int   `bun:"total"`
		Min   int64 `bun:"min_pos"`
		Max   int64 `bun:"max_pos"`
	}
	err = applyVariantFilter(s.db.NewSelect().Model((*genomics.VariantRecord)(nil)), filter).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COALESCE(MIN(v.position), 0) AS min_pos").
		ColumnExpr("COALESCE(MAX(v.position), 0) AS max_pos").
		Scan(ctx, &bounds)
	if err != nil {
		return genomics.AggregateStats{}, err
	}

	stats := genomics.AggregateStats{
		TotalRecords: bounds.Total,
		CountsByKey:  make(map[string]int, len(groups)),
		MinPosition:  bounds.Min,
		MaxPosition:  bounds.Max,
	}
	for _, g := range groups {
		stats.CountsByKey[g.Key] = g.Count
	}
	return stats, nil
}
