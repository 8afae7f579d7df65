package pkg

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/simp-lee/kontakt/internal/query"
)

// MongoFilter compiles p into a MongoDB query document.
//
// Ne with a value is compiled to $nin [value, null] so that, as on SQL stores,
// documents whose field is null or missing never satisfy an inequality.
func MongoFilter(p query.Predicate) bson.D {
	switch p.Op {
	case query.OpEq:
		return bson.D{{Key: p.Field, Value: p.Value}}
	case query.OpNe:
		if p.Value == nil {
			return bson.D{{Key: p.Field, Value: bson.D{{Key: "$ne", Value: nil}}}}
		}
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$nin", Value: bson.A{p.Value, nil}}}}}
	case query.OpGt:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$gt", Value: p.Value}}}}
	case query.OpLt:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$lt", Value: p.Value}}}}
	case query.OpIn:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$in", Value: bson.A(p.Values)}}}}
	case query.OpRegex:
		return bson.D{{Key: p.Field, Value: primitive.Regex{Pattern: p.Pattern, Options: "i"}}}
	case query.OpAnd, query.OpOr:
		children := make(bson.A, 0, len(p.Children))
		for _, c := range p.Children {
			children = append(children, MongoFilter(c))
		}
		key := "$and"
		if p.Op == query.OpOr {
			key = "$or"
		}
		return bson.D{{Key: key, Value: children}}
	default:
		return bson.D{}
	}
}

// MongoSort compiles keys into a MongoDB sort document.
func MongoSort(keys []query.SortKey) bson.D {
	if len(keys) == 0 {
		return nil
	}
	sort := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: k.Field, Value: dir})
	}
	return sort
}
