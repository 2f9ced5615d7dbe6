package repositorycache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/varlab/genomecache/cache"
	"github.com/varlab/genomecache/genomics"
	"github.com/varlab/genomecache/perf"
)

// mapBackend is an in-process cache.Backend for decorator tests.
type mapBackend struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMapBackend() *mapBackend {
	return &mapBackend{data: map[string][]byte{}}
}

func (b *mapBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	payload, ok := b.data[key]
	return payload, ok, nil
}

func (b *mapBackend) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if b.setErr != nil {
		return b.setErr
	}
	b.data[key] = payload
	return nil
}

func (b *mapBackend) Delete(ctx context.Context, key string) error {
	delete(b.data, key)
	return nil
}

// mockGeneRepo counts calls so tests can prove whether the cache bypassed it.
type mockGeneRepo struct {
	findCalls  int
	getCalls   int
	countCalls int
	aggCalls   int
	err        error
}

func (m *mockGeneRepo) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[genomics.GeneRecord], error) {
	m.findCalls++
	if m.err != nil {
		return genomics.Page[genomics.GeneRecord]{}, m.err
	}
	return genomics.Page[genomics.GeneRecord]{
		Records: []genomics.GeneRecord{{ID: "g1", Symbol: "BRCA1", Chromosome: filter.Chromosome}},
		Total:   1,
		Limit:   page.Limit,
	}, nil
}

func (m *mockGeneRepo) GetByID(ctx context.Context, id string) (genomics.GeneRecord, error) {
	m.getCalls++
	if m.err != nil {
		return genomics.GeneRecord{}, m.err
	}
	return genomics.GeneRecord{ID: id, Symbol: "TP53"}, nil
}

func (m *mockGeneRepo) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return 42, nil
}

func (m *mockGeneRepo) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	m.aggCalls++
	if m.err != nil {
		return genomics.AggregateStats{}, m.err
	}
	return genomics.AggregateStats{TotalRecords: 42, CountsByKey: map[string]int{"17": 3}}, nil
}

func newTestCached(t *testing.T, base *mockGeneRepo, l1 *mapBackend, opts ...Option[genomics.GeneRecord]) *CachedRepository[genomics.GeneRecord] {
	t.Helper()
	manager := cache.NewManager(l1, nil)
	return New[genomics.GeneRecord](base, manager, cache.NewDefaultKeySerializer(), nil, opts...)
}

func TestCachedRepository_SecondReadSkipsBase(t *testing.T) {
	base := &mockGeneRepo{}
	cached := newTestCached(t, base, newMapBackend())
	ctx := context.Background()

	filter := genomics.SearchFilter{Chromosome: "17"}
	page := genomics.PageRequest{Limit: 25}

	first, err := cached.FindManyWithFilter(ctx, filter, page)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := cached.FindManyWithFilter(ctx, filter, page)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}

	if base.findCalls != 1 {
		t.Errorf("expected 1 base call, got %d", base.findCalls)
	}
	if len(second.Records) != len(first.Records) || second.Records[0].ID != first.Records[0].ID {
		t.Errorf("cached page differs from original: %+v vs %+v", second, first)
	}
}

func TestCachedRepository_DistinctArgsDistinctEntries(t *testing.T) {
	base := &mockGeneRepo{}
	cached := newTestCached(t, base, newMapBackend())
	ctx := context.Background()

	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := cached.GetByID(ctx, "g2"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if base.getCalls != 2 {
		t.Errorf("expected 2 base calls for 2 distinct ids, got %d", base.getCalls)
	}
}

func TestCachedRepository_AllOperationsCache(t *testing.T) {
	base := &mockGeneRepo{}
	cached := newTestCached(t, base, newMapBackend())
	ctx := context.Background()
	filter := genomics.SearchFilter{Chromosome: "17"}

	for i := 0; i < 2; i++ {
		if _, err := cached.Count(ctx, filter); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if _, err := cached.AggregateStatistics(ctx, filter); err != nil {
			t.Fatalf("aggregate failed: %v", err)
		}
	}

	if base.countCalls != 1 {
		t.Errorf("expected 1 count call, got %d", base.countCalls)
	}
	if base.aggCalls != 1 {
		t.Errorf("expected 1 aggregate call, got %d", base.aggCalls)
	}
}

func TestCachedRepository_ErrorsNotCached(t *testing.T) {
	base := &mockGeneRepo{err: errors.New("db down")}
	cached := newTestCached(t, base, newMapBackend())
	ctx := context.Background()

	if _, err := cached.GetByID(ctx, "g1"); err == nil {
		t.Fatal("expected error from base")
	}

	base.err = nil
	record, err := cached.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if record.Symbol != "TP53" {
		t.Errorf("unexpected record %+v", record)
	}
	if base.getCalls != 2 {
		t.Errorf("expected 2 base calls, got %d", base.getCalls)
	}
}

func TestCachedRepository_CacheFailureFallsThrough(t *testing.T) {
	backend := newMapBackend()
	backend.getErr = errors.New("tier down")
	backend.setErr = errors.New("tier down")

	base := &mockGeneRepo{}
	cached := newTestCached(t, base, backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := cached.GetByID(ctx, "g1")
		if err != nil {
			t.Fatalf("read %d failed despite healthy base: %v", i, err)
		}
		if record.Symbol != "TP53" {
			t.Errorf("unexpected record %+v", record)
		}
	}

	if base.getCalls != 3 {
		t.Errorf("expected every read to reach the base, got %d calls", base.getCalls)
	}
}

func TestCachedRepository_KeysCarryTypeNamespace(t *testing.T) {
	backend := newMapBackend()
	cached := newTestCached(t, &mockGeneRepo{}, backend)

	if _, err := cached.GetByID(context.Background(), "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if len(backend.data) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(backend.data))
	}
	for key := range backend.data {
		if !strings.HasPrefix(key, "gene_record"+cache.KeySeparator) {
			t.Errorf("key %q missing gene_record namespace", key)
		}
	}
}

func TestCachedRepository_NamespaceOverride(t *testing.T) {
	backend := newMapBackend()
	cached := newTestCached(t, &mockGeneRepo{}, backend, WithNamespace[genomics.GeneRecord]("genes_v2"))

	if _, err := cached.GetByID(context.Background(), "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	for key := range backend.data {
		if !strings.HasPrefix(key, "genes_v2"+cache.KeySeparator) {
			t.Errorf("key %q missing overridden namespace", key)
		}
	}
}

func TestCachedRepository_Invalidate(t *testing.T) {
	base := &mockGeneRepo{}
	cached := newTestCached(t, base, newMapBackend())
	ctx := context.Background()

	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := cached.Invalidate(ctx, "GetByID", "g1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if base.getCalls != 2 {
		t.Errorf("expected base call after invalidation, got %d calls", base.getCalls)
	}
}

func TestCachedRepository_HitRecordsSyntheticSample(t *testing.T) {
	monitor := perf.NewMonitor(perf.Config{})
	base := &mockGeneRepo{}
	manager := cache.NewManager(newMapBackend(), nil)
	cached := New[genomics.GeneRecord](base, manager, cache.NewDefaultKeySerializer(), monitor)
	ctx := context.Background()

	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if _, err := cached.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("second get failed: %v", err)
	}

	report := monitor.PerformanceReport(time.Hour)
	if report.TotalQueries != 1 {
		t.Errorf("expected 1 timed query, got %d", report.TotalQueries)
	}
	if report.CacheHits != 1 {
		t.Errorf("expected 1 cache hit sample, got %d", report.CacheHits)
	}
}

func TestInstrumentedRepository_TimesEveryCall(t *testing.T) {
	monitor := perf.NewMonitor(perf.Config{})
	base := &mockGeneRepo{}
	repo := NewInstrumented[genomics.GeneRecord](base, monitor)
	ctx := context.Background()

	if _, err := repo.FindManyWithFilter(ctx, genomics.SearchFilter{}, genomics.PageRequest{}); err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := repo.Count(ctx, genomics.SearchFilter{}); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if _, err := repo.AggregateStatistics(ctx, genomics.SearchFilter{}); err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	report := monitor.PerformanceReport(time.Hour)
	if report.TotalQueries != 4 {
		t.Errorf("expected 4 timed queries, got %d", report.TotalQueries)
	}
	if report.CacheHits != 0 {
		t.Errorf("instrumented repository must not report cache hits, got %d", report.CacheHits)
	}
}

func TestInstrumentedRepository_PassesThroughErrors(t *testing.T) {
	base := &mockGeneRepo{err: errors.New("db down")}
	repo := NewInstrumented[genomics.GeneRecord](base, nil)

	if _, err := repo.GetByID(context.Background(), "g1"); err == nil {
		t.Fatal("expected error from base")
	}
}

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GeneRecord", "gene_record"},
		{"VariantRecord", "variant_record"},
		{"ID", "id"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		if got := toSnake(tt.in); got != tt.want {
			t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
