package query

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestIDIn(t *testing.T) {
	if _, ok := IDIn("contact_id", nil); ok {
		t.Fatal("empty id set should produce no predicate")
	}

	a := uuid.MustParse("6f1c1f3e-2c5b-4a59-9a8e-1d1a9b0c7e11")
	b := uuid.MustParse("0b7d9f6a-8d1e-4f3a-b2c4-5e6f7a8b9c0d")
	got, ok := IDIn("contact_id", []uuid.UUID{a, b})
	if !ok {
		t.Fatal("expected predicate")
	}
	want := In("contact_id", a.String(), b.String())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IDIn mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeBounds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	bound := time.Date(1990, 5, 1, 2, 0, 0, 0, loc)

	if _, ok := After("birthdate", nil); ok {
		t.Error("nil lower bound should produce no predicate")
	}
	if _, ok := Before("birthdate", nil); ok {
		t.Error("nil upper bound should produce no predicate")
	}

	after, ok := After("birthdate", &bound)
	if !ok || after.Op != OpGt {
		t.Fatalf("After = %v, %v; want gt predicate", after, ok)
	}
	before, ok := Before("birthdate", &bound)
	if !ok || before.Op != OpLt {
		t.Fatalf("Before = %v, %v; want lt predicate", before, ok)
	}

	v, _ := after.Value.(time.Time)
	if v.Location() != time.UTC {
		t.Errorf("bound location = %v; want UTC", v.Location())
	}
	if !v.Equal(bound) {
		t.Errorf("bound = %v; want instant %v", v, bound)
	}
}

func TestPresence(t *testing.T) {
	if _, ok := Presence("birthdate", nil); ok {
		t.Error("absent flag should produce no predicate")
	}
	got, _ := Presence("birthdate", ptr(true))
	if diff := cmp.Diff(Ne("birthdate", nil), got); diff != "" {
		t.Errorf("has=true mismatch (-want +got):\n%s", diff)
	}
	got, _ = Presence("birthdate", ptr(false))
	if diff := cmp.Diff(Eq("birthdate", nil), got); diff != "" {
		t.Errorf("has=false mismatch (-want +got):\n%s", diff)
	}
}

func TestExact(t *testing.T) {
	if _, ok := Exact("gender", nil, true); ok {
		t.Error("negation without a value should produce no predicate")
	}
	got, _ := Exact("gender", ptr("F"), false)
	if diff := cmp.Diff(Eq("gender", "F"), got); diff != "" {
		t.Errorf("eq mismatch (-want +got):\n%s", diff)
	}
	got, _ = Exact("gender", ptr("F"), true)
	if diff := cmp.Diff(Ne("gender", "F"), got); diff != "" {
		t.Errorf("ne mismatch (-want +got):\n%s", diff)
	}
}

func TestText(t *testing.T) {
	fields := []string{"email_address", "first_name"}
	termOn := func(pattern string) Predicate {
		return Or(Regex("email_address", pattern), Regex("first_name", pattern))
	}

	tests := []struct {
		name   string
		search TextSearch
		want   Predicate
		ok     bool
	}{
		{
			name:   "no terms",
			search: TextSearch{Operator: OperatorAnd},
		},
		{
			name:   "blank terms only",
			search: TextSearch{Terms: []SearchTerm{{""}, {"   "}}},
		},
		{
			name:   "unknown operator",
			search: TextSearch{Terms: []SearchTerm{{"ada"}}, Operator: "xor"},
		},
		{
			name:   "single term",
			search: TextSearch{Terms: []SearchTerm{{"%ada%"}}, Operator: OperatorAnd},
			want:   termOn("ada"),
			ok:     true,
		},
		{
			name:   "empty operator defaults to and",
			search: TextSearch{Terms: []SearchTerm{{"ada%"}, {"%byron"}}},
			want:   And(termOn("^ada"), termOn("byron$")),
			ok:     true,
		},
		{
			name:   "or is case-insensitive",
			search: TextSearch{Terms: []SearchTerm{{"ada"}, {" "}, {"b_ron"}}, Operator: "OR"},
			want:   Or(termOn("^ada$"), termOn("^b.ron$")),
			ok:     true,
		},
		{
			name:   "terms are trimmed before compiling",
			search: TextSearch{Terms: []SearchTerm{{"  ada  "}}},
			want:   termOn("^ada$"),
			ok:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Text(tt.search, fields...)
			if ok != tt.ok {
				t.Fatalf("ok = %v; want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Text mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, ok := Text(TextSearch{Terms: []SearchTerm{{"ada"}}}); ok {
		t.Error("no fields should produce no predicate")
	}
}

func TestFilters(t *testing.T) {
	var f Filters
	if !f.Predicate().IsAll() {
		t.Fatalf("empty filters = %v; want all", f.Predicate())
	}

	f.Add(Presence("birthdate", nil))
	if f.Len() != 0 {
		t.Fatalf("Len = %d; want 0 after skipped criterion", f.Len())
	}

	f.Add(Exact("gender", ptr("F"), false))
	if diff := cmp.Diff(Eq("gender", "F"), f.Predicate()); diff != "" {
		t.Errorf("single criterion mismatch (-want +got):\n%s", diff)
	}

	f.Add(Presence("birthdate", ptr(true)))
	want := Predicate{Op: OpAnd, Children: []Predicate{Eq("gender", "F"), Ne("birthdate", nil)}}
	if diff := cmp.Diff(want, f.Predicate()); diff != "" {
		t.Errorf("conjunction mismatch (-want +got):\n%s", diff)
	}
}
