package genomics

import "context"

// Repository is the read contract every store variant satisfies. Reads must be
// idempotent and side-effect free so results can be cached safely.
type Repository[T any] interface {
	// FindManyWithFilter returns one page of records matching the filter.
	FindManyWithFilter(ctx context.Context, filter SearchFilter, page PageRequest) (Page[T], error)

	// GetByID returns a single record, or a *NotFoundError when the ID has
	// no record.
	GetByID(ctx context.Context, id string) (T, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter SearchFilter) (int, error)

	// AggregateStatistics computes summary statistics over the filtered set.
	AggregateStatistics(ctx context.Context, filter SearchFilter) (AggregateStats, error)
}

// NotFoundError reports a lookup for an ID that has no record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found: " + e.ID
}
