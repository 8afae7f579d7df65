package pkg

import (
	"fmt"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/kontakt/internal/query"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Paginate returns a GORM scope that applies OFFSET and LIMIT.
// Zero (or negative) values leave the corresponding clause off.
func Paginate(skip, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// Sort returns a GORM scope that applies ORDER BY for keys, in order.
// Keys whose field is not a plain identifier are silently ignored.
func Sort(keys []query.SortKey) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, k := range keys {
			if !validFieldName.MatchString(k.Field) {
				continue
			}
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: k.Field},
				Desc:   k.Desc,
			})
		}
		return db
	}
}

// Filter returns a GORM scope that applies p as a WHERE condition.
// The universal predicate adds nothing. A predicate that cannot be compiled
// is recorded on db as an error, so the query fails instead of widening.
func Filter(p query.Predicate) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAll() {
			return db
		}
		expr, err := Condition(p, db.Dialector.Name())
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		return db.Where(expr)
	}
}

// Condition compiles p into a GORM clause expression for the named dialect.
// Regular expressions use "~*" on postgres and the REGEXP operator elsewhere;
// SQLite provides REGEXP through the function registered in this package.
func Condition(p query.Predicate, dialect string) (clause.Expression, error) {
	switch p.Op {
	case query.OpAll:
		return clause.Expr{SQL: "1 = 1"}, nil
	case query.OpAnd, query.OpOr:
		exprs := make([]clause.Expression, 0, len(p.Children))
		for _, child := range p.Children {
			e, err := Condition(child, dialect)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		if p.Op == query.OpAnd {
			return clause.AndConditions{Exprs: exprs}, nil
		}
		return clause.OrConditions{Exprs: exprs}, nil
	}

	if !validFieldName.MatchString(p.Field) {
		return nil, fmt.Errorf("invalid field name %q", p.Field)
	}
	col := clause.Column{Name: p.Field}

	switch p.Op {
	case query.OpEq:
		return clause.Eq{Column: col, Value: p.Value}, nil
	case query.OpNe:
		return clause.Neq{Column: col, Value: p.Value}, nil
	case query.OpGt:
		return clause.Gt{Column: col, Value: p.Value}, nil
	case query.OpLt:
		return clause.Lt{Column: col, Value: p.Value}, nil
	case query.OpIn:
		return clause.IN{Column: col, Values: p.Values}, nil
	case query.OpRegex:
		if dialect == "postgres" {
			return clause.Expr{SQL: "? ~* ?", Vars: []any{col, p.Pattern}}, nil
		}
		return clause.Expr{SQL: "? REGEXP ?", Vars: []any{col, "(?i)" + p.Pattern}}, nil
	default:
		return nil, fmt.Errorf("unsupported predicate %s", p.Op)
	}
}
