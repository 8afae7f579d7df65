package pkg

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/simp-lee/kontakt/internal/query"
)

func TestMongoFilter(t *testing.T) {
	birth := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		pred query.Predicate
		want bson.D
	}{
		{"all", query.All(), bson.D{}},
		{"eq", query.Eq("gender", "F"), bson.D{{Key: "gender", Value: "F"}}},
		{"eq nil", query.Eq("birthdate", nil), bson.D{{Key: "birthdate", Value: nil}}},
		{
			name: "ne nil",
			pred: query.Ne("birthdate", nil),
			want: bson.D{{Key: "birthdate", Value: bson.D{{Key: "$ne", Value: nil}}}},
		},
		{
			name: "ne value excludes null",
			pred: query.Ne("gender", "F"),
			want: bson.D{{Key: "gender", Value: bson.D{{Key: "$nin", Value: bson.A{"F", nil}}}}},
		},
		{
			name: "gt",
			pred: query.Gt("birthdate", birth),
			want: bson.D{{Key: "birthdate", Value: bson.D{{Key: "$gt", Value: birth}}}},
		},
		{
			name: "lt",
			pred: query.Lt("birthdate", birth),
			want: bson.D{{Key: "birthdate", Value: bson.D{{Key: "$lt", Value: birth}}}},
		},
		{
			name: "in",
			pred: query.In("contact_id", "a", "b"),
			want: bson.D{{Key: "contact_id", Value: bson.D{{Key: "$in", Value: bson.A{"a", "b"}}}}},
		},
		{
			name: "regex",
			pred: query.Regex("first_name", "^ada$"),
			want: bson.D{{Key: "first_name", Value: primitive.Regex{Pattern: "^ada$", Options: "i"}}},
		},
		{
			name: "and of or",
			pred: query.And(
				query.Eq("gender", "F"),
				query.Or(query.Regex("first_name", "^a"), query.Regex("last_name", "^a")),
			),
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "gender", Value: "F"}},
				bson.D{{Key: "$or", Value: bson.A{
					bson.D{{Key: "first_name", Value: primitive.Regex{Pattern: "^a", Options: "i"}}},
					bson.D{{Key: "last_name", Value: primitive.Regex{Pattern: "^a", Options: "i"}}},
				}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, MongoFilter(tt.pred)); diff != "" {
				t.Errorf("MongoFilter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMongoSort(t *testing.T) {
	if got := MongoSort(nil); got != nil {
		t.Errorf("MongoSort(nil) = %v; want nil", got)
	}

	got := MongoSort([]query.SortKey{{Field: "last_name"}, {Field: "birthdate", Desc: true}})
	want := bson.D{{Key: "last_name", Value: 1}, {Key: "birthdate", Value: -1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MongoSort mismatch (-want +got):\n%s", diff)
	}
}
