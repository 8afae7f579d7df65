package query

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDIn matches documents whose identifier field is one of ids.
// It produces no predicate when ids is empty.
func IDIn(field string, ids []uuid.UUID) (Predicate, bool) {
	if len(ids) == 0 {
		return Predicate{}, false
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return In(field, values...), true
}

// After matches documents whose field is strictly later than t.
func After(field string, t *time.Time) (Predicate, bool) {
	if t == nil {
		return Predicate{}, false
	}
	return Gt(field, t.UTC()), true
}

// Before matches documents whose field is strictly earlier than t.
func Before(field string, t *time.Time) (Predicate, bool) {
	if t == nil {
		return Predicate{}, false
	}
	return Lt(field, t.UTC()), true
}

// Presence tests whether field holds a value. A nil has produces no predicate.
func Presence(field string, has *bool) (Predicate, bool) {
	if has == nil {
		return Predicate{}, false
	}
	if *has {
		return Ne(field, nil), true
	}
	return Eq(field, nil), true
}

// Exact matches field against *v, or its negation when negate is set.
// A nil v produces no predicate regardless of negate.
func Exact(field string, v *string, negate bool) (Predicate, bool) {
	if v == nil {
		return Predicate{}, false
	}
	if negate {
		return Ne(field, *v), true
	}
	return Eq(field, *v), true
}

// Text builds the predicate for a free-text search over fields. Each non-blank
// term must match at least one of fields; the per-term predicates are then
// combined with the search operator. It produces no predicate when no term is
// usable, no field is given or the operator is not recognized.
func Text(search TextSearch, fields ...string) (Predicate, bool) {
	if len(fields) == 0 {
		return Predicate{}, false
	}

	var op func(...Predicate) Predicate
	switch search.Operator.normalize() {
	case OperatorAnd:
		op = And
	case OperatorOr:
		op = Or
	default:
		return Predicate{}, false
	}

	perTerm := make([]Predicate, 0, len(search.Terms))
	for _, term := range search.Terms {
		value := strings.TrimSpace(term.Value)
		if value == "" {
			continue
		}
		pattern := CompileWildcard(value)
		matches := make([]Predicate, len(fields))
		for i, f := range fields {
			matches[i] = Regex(f, pattern)
		}
		perTerm = append(perTerm, Or(matches...))
	}
	if len(perTerm) == 0 {
		return Predicate{}, false
	}

	return op(perTerm...), true
}

// Filters accumulates independent criteria and folds them into one
// conjunctive predicate.
type Filters struct {
	preds []Predicate
}

// Add appends p when ok is set. Its signature matches the criteria builders so
// they can be passed straight through: f.Add(query.Presence(...)).
func (f *Filters) Add(p Predicate, ok bool) {
	if !ok {
		return
	}
	f.preds = append(f.preds, p)
}

// Len returns the number of accumulated predicates.
func (f *Filters) Len() int {
	return len(f.preds)
}

// Predicate returns the conjunction of the accumulated predicates, or the
// universal predicate when none were added.
func (f *Filters) Predicate() Predicate {
	return And(f.preds...)
}
