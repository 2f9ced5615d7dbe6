package repositorycache

import (
	"context"
	"time"

	"github.com/varlab/genomecache/genomics"
	"github.com/varlab/genomecache/perf"
)

var _ genomics.Repository[any] = (*InstrumentedRepository[any])(nil)

// InstrumentedRepository times every read against the query monitor without
// caching anything. It is the wiring target for OPTIMIZATION_LEVEL=optimized,
// where monitoring is wanted but the cache tiers are not. Timing is applied
// by explicit composition at wiring time rather than by any runtime
// interception mechanism.
type InstrumentedRepository[T any] struct {
	base      genomics.Repository[T]
	monitor   *perf.Monitor
	namespace string
}

// NewInstrumented wraps base with timing.
func NewInstrumented[T any](base genomics.Repository[T], monitor *perf.Monitor) *InstrumentedRepository[T] {
	return &InstrumentedRepository[T]{
		base:      base,
		monitor:   monitor,
		namespace: namespaceFor[T](),
	}
}

func (r *InstrumentedRepository[T]) FindManyWithFilter(ctx context.Context, filter genomics.SearchFilter, page genomics.PageRequest) (genomics.Page[T], error) {
	start := time.Now()
	result, err := r.base.FindManyWithFilter(ctx, filter, page)
	r.record(r.namespace+".findManyWithFilter", time.Since(start), len(result.Records))
	return result, err
}

func (r *InstrumentedRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	start := time.Now()
	result, err := r.base.GetByID(ctx, id)
	r.record(r.namespace+".getById", time.Since(start), 1)
	return result, err
}

func (r *InstrumentedRepository[T]) Count(ctx context.Context, filter genomics.SearchFilter) (int, error) {
	start := time.Now()
	result, err := r.base.Count(ctx, filter)
	r.record(r.namespace+".count", time.Since(start), result)
	return result, err
}

func (r *InstrumentedRepository[T]) AggregateStatistics(ctx context.Context, filter genomics.SearchFilter) (genomics.AggregateStats, error) {
	start := time.Now()
	result, err := r.base.AggregateStatistics(ctx, filter)
	r.record(r.namespace+".aggregateStatistics", time.Since(start), result.TotalRecords)
	return result, err
}

func (r *InstrumentedRepository[T]) record(op string, duration time.Duration, rowCount int) {
	if r.monitor == nil {
		return
	}
	r.monitor.Record(perf.QueryMetric{
		Operation: op,
		Duration:  duration,
		RowCount:  rowCount,
		Source:    perf.SourceRepository,
	})
}
