package testsupport

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/varlab/genomecache/genomics"
)

//go:embed testdata/genes.json
var genesJSON []byte

//go:embed testdata/variants.json
var variantsJSON []byte

// GeneFixtures returns the canonical gene seed set shared by store and
// repository tests. Callers get a fresh slice on every call.
func GeneFixtures(t *testing.T) []genomics.GeneRecord {
	t.Helper()

	var genes []genomics.GeneRecord
	if err := json.Unmarshal(genesJSON, &genes); err != nil {
		t.Fatalf("failed to unmarshal gene fixtures: %v", err)
	}
	return genes
}

// VariantFixtures returns the canonical variant seed set.
func VariantFixtures(t *testing.T) []genomics.VariantRecord {
	t.Helper()

	var variants []genomics.VariantRecord
	if err := json.Unmarshal(variantsJSON, &variants); err != nil {
		t.Fatalf("failed to unmarshal variant fixtures: %v", err)
	}
	return variants
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest interface{}) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
