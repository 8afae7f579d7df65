package query

import (
	"context"
	"fmt"
)

// Query is a compiled search: a filter, an ordering and a result window.
// Limit 0 means no limit.
type Query struct {
	Filter Predicate
	Sort   []SortKey
	Skip   int
	Limit  int
}

// Source is a store that can count and fetch documents of type T.
type Source[T any] interface {
	Count(ctx context.Context, filter Predicate) (int64, error)
	Find(ctx context.Context, q Query) ([]T, error)
}

// Execute counts every document matching q.Filter and then fetches the
// requested page. The total ignores q.Sort, q.Skip and q.Limit. Negative Skip
// and Limit are treated as zero.
func Execute[T any](ctx context.Context, src Source[T], q Query) (*Results[T], error) {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Limit < 0 {
		q.Limit = 0
	}

	total, err := src.Count(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	items, err := src.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	if items == nil {
		items = []T{}
	}

	return &Results[T]{Results: items, Total: total}, nil
}
