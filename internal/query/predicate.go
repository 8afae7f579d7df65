// Package query holds the search request model and translates it into
// store-neutral predicates, sort keys and pagination that the gorm and MongoDB
// backends compile into their own query languages.
package query

import (
	"fmt"
	"regexp"
)

// Op identifies the kind of a Predicate.
type Op int

const (
	// OpAll matches every document.
	OpAll Op = iota
	OpEq
	OpNe
	OpGt
	OpLt
	OpIn
	OpRegex
	OpAnd
	OpOr
)

var opNames = map[Op]string{
	OpAll:   "all",
	OpEq:    "eq",
	OpNe:    "ne",
	OpGt:    "gt",
	OpLt:    "lt",
	OpIn:    "in",
	OpRegex: "regex",
	OpAnd:   "and",
	OpOr:    "or",
}

// String returns the lowercase operator name.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Predicate is a boolean condition over a stored document.
//
// It is a tagged union: Op selects which of the remaining fields are
// meaningful. Leaf predicates use Field plus Value (eq, ne, gt, lt), Values
// (in) or Pattern (regex). Composite predicates (and, or) use Children.
//
// Null semantics: Eq and Ne with a nil Value test field presence. Every other
// comparison, including Ne with a non-nil value, never matches a document whose
// field is null or missing.
type Predicate struct {
	Op       Op
	Field    string
	Value    any
	Values   []any
	Pattern  string
	Children []Predicate
}

// All returns the universal predicate.
func All() Predicate {
	return Predicate{Op: OpAll}
}

// Eq matches documents whose field equals v. A nil v matches null or missing fields.
func Eq(field string, v any) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: v}
}

// Ne matches documents whose field differs from v. A nil v matches present,
// non-null fields.
func Ne(field string, v any) Predicate {
	return Predicate{Op: OpNe, Field: field, Value: v}
}

// Gt matches documents whose field is strictly greater than v.
func Gt(field string, v any) Predicate {
	return Predicate{Op: OpGt, Field: field, Value: v}
}

// Lt matches documents whose field is strictly less than v.
func Lt(field string, v any) Predicate {
	return Predicate{Op: OpLt, Field: field, Value: v}
}

// In matches documents whose field is a member of values.
func In(field string, values ...any) Predicate {
	return Predicate{Op: OpIn, Field: field, Values: values}
}

// Regex matches documents whose field matches pattern, case-insensitively.
func Regex(field, pattern string) Predicate {
	return Predicate{Op: OpRegex, Field: field, Pattern: pattern}
}

// And returns the conjunction of ps. The universal predicate is the identity:
// All children are dropped, an empty conjunction is All and a single child is
// returned unwrapped.
func And(ps ...Predicate) Predicate {
	children := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p.IsAll() {
			continue
		}
		children = append(children, p)
	}
	switch len(children) {
	case 0:
		return All()
	case 1:
		return children[0]
	default:
		return Predicate{Op: OpAnd, Children: children}
	}
}

// Or returns the disjunction of ps. A single child is returned unwrapped and
// any All child makes the whole disjunction All. An empty disjunction is
// treated as no constraint and also yields All.
func Or(ps ...Predicate) Predicate {
	for _, p := range ps {
		if p.IsAll() {
			return All()
		}
	}
	switch len(ps) {
	case 0:
		return All()
	case 1:
		return ps[0]
	default:
		children := make([]Predicate, len(ps))
		copy(children, ps)
		return Predicate{Op: OpOr, Children: children}
	}
}

// Validate reports the first regex pattern in p that does not compile.
func (p Predicate) Validate() error {
	switch p.Op {
	case OpRegex:
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q for %s: %w", p.Pattern, p.Field, err)
		}
	case OpAnd, OpOr:
		for _, c := range p.Children {
			if err := c.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsAll reports whether p is the universal predicate.
func (p Predicate) IsAll() bool {
	return p.Op == OpAll
}

// String renders p in a compact prefix form, e.g. and(eq(gender,F),gt(birthdate,...)).
func (p Predicate) String() string {
	switch p.Op {
	case OpAll:
		return "all"
	case OpEq, OpNe, OpGt, OpLt:
		return fmt.Sprintf("%s(%s,%v)", p.Op, p.Field, p.Value)
	case OpIn:
		return fmt.Sprintf("in(%s,%v)", p.Field, p.Values)
	case OpRegex:
		return fmt.Sprintf("regex(%s,%s)", p.Field, p.Pattern)
	case OpAnd, OpOr:
		s := p.Op.String() + "("
		for i, c := range p.Children {
			if i > 0 {
				s += ","
			}
			s += c.String()
		}
		return s + ")"
	default:
		return p.Op.String()
	}
}
