package query

import (
	"strings"

	"github.com/google/uuid"
)

// Operator combines the per-term predicates of a TextSearch.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// normalize folds case and maps the empty operator to OperatorAnd. Any other
// value is returned as-is and is rejected by Text.
func (o Operator) normalize() Operator {
	switch strings.ToLower(strings.TrimSpace(string(o))) {
	case "", string(OperatorAnd):
		return OperatorAnd
	case string(OperatorOr):
		return OperatorOr
	default:
		return o
	}
}

// SearchTerm is a single free-text value that may contain '%' and '_' wildcards.
type SearchTerm struct {
	Value string `json:"value"`
}

// TextSearch is a group of terms combined by Operator.
type TextSearch struct {
	Terms    []SearchTerm `json:"terms"`
	Operator Operator     `json:"operator"`
}

// SortOption orders results by a resource-specific logical field.
type SortOption[F ~string] struct {
	Field        F    `json:"field"`
	IsDescending bool `json:"is_descending"`
}

// SearchRequest holds the criteria shared by every resource search.
// Resource requests embed it and add their own filters and sort options.
type SearchRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Search TextSearch  `json:"search"`
	Skip   int         `json:"skip" binding:"min=0"`
	Limit  int         `json:"limit" binding:"min=0"`
}

// Results is one page of search results plus the number of documents that
// matched before skip and limit were applied.
type Results[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
