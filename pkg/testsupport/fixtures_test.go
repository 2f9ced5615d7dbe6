package testsupport

import (
	"testing"
)

func TestGeneFixtures(t *testing.T) {
	genes := GeneFixtures(t)

	if len(genes) != 8 {
		t.Fatalf("expected 8 gene fixtures, got %d", len(genes))
	}

	byChromosome := map[string]int{}
	for _, g := range genes {
		if g.ID == "" || g.Symbol == "" || g.Chromosome == "" {
			t.Errorf("gene fixture missing required fields: %+v", g)
		}
		if g.EndPos <= g.StartPos {
			t.Errorf("gene %s has inverted coordinates: %d..%d", g.Symbol, g.StartPos, g.EndPos)
		}
		byChromosome[g.Chromosome]++
	}

	if byChromosome["17"] != 3 {
		t.Errorf("expected 3 genes on chromosome 17, got %d", byChromosome["17"])
	}
}

func TestVariantFixtures(t *testing.T) {
	variants := VariantFixtures(t)

	if len(variants) != 8 {
		t.Fatalf("expected 8 variant fixtures, got %d", len(variants))
	}

	pathogenic := 0
	for _, v := range variants {
		if v.ID == "" || v.GeneID == "" || v.Chromosome == "" {
			t.Errorf("variant fixture missing required fields: %+v", v)
		}
		if v.Significance == "pathogenic" {
			pathogenic++
		}
	}

	if pathogenic != 4 {
		t.Errorf("expected 4 pathogenic variants, got %d", pathogenic)
	}
}

func TestFixturesReturnFreshSlices(t *testing.T) {
	first := GeneFixtures(t)
	first[0].Symbol = "MUTATED"

	second := GeneFixtures(t)
	if second[0].Symbol == "MUTATED" {
		t.Error("GeneFixtures returned a shared slice across calls")
	}
}
