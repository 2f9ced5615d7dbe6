package genestore

import (
	"github.com/uptrace/bun"

	"github.com/varlab/genomecache/genomics"
)

func applyGeneFilter(q *bun.SelectQuery, f genomics.SearchFilter) *bun.SelectQuery {
	if f.Chromosome != "" {
		q = q.Where("g.chromosome = ?", f.Chromosome)
	}
	if f.Symbol != "" {
		q = q.Where("g.symbol = ?", f.Symbol)
	}
	if f.Biotype != "" {
		q = q.Where("g.biotype = ?", f.Biotype)
	}
	if f.MinPosition > 0 {
		q = q.Where("g.end_pos >= ?", f.MinPosition)
	}
	if f.MaxPosition > 0 {
		q = q.Where("g.start_pos <= ?", f.MaxPosition)
	}
	if f.Query != "" {
		q = q.Where("(g.symbol LIKE ? OR g.name LIKE ?)", "%"+f.Query+"%", "%"+f.Query+"%")
	}
	return q
}

func applyVariantFilter(q *bun.SelectQuery, f genomics.SearchFilter) *bun.SelectQuery {
	if f.Chromosome != "" {
		q = q.Where("v.chromosome = ?", f.Chromosome)
	}
	if f.Significance != "" {
		q = q.Where("v.significance = ?", f.Significance)
	}
	if f.MinPosition > 0 {
		q = q.Where("v.position >= ?", f.MinPosition)
	}
	if f.MaxPosition > 0 {
		q = q.Where("v.position <= ?", f.MaxPosition)
	}
	if f.Query != "" {
		q = q.Where("v.gene_id IN (SELECT id FROM genes WHERE symbol LIKE ?)", "%"+f.Query+"%")
	}
	return q
}
