package contact

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/query"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildFilter(t *testing.T) {
	id1 := uuid.MustParse("6f1c1f3e-2c5b-4a59-9a8e-1d1a9b0c7e11")
	id2 := uuid.MustParse("0b8d8d0c-7c1e-4d8b-8f57-3f9f2f7c2a10")
	after := time.Date(1900, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))

	termPred := func(pattern string) query.Predicate {
		return query.Or(
			query.Regex(domain.FieldEmailAddress, pattern),
			query.Regex(domain.FieldPhoneNumber, pattern),
			query.Regex(domain.FieldFirstName, pattern),
			query.Regex(domain.FieldLastName, pattern),
		)
	}

	tests := []struct {
		name string
		req  domain.SearchContactsRequest
		want query.Predicate
	}{
		{
			name: "empty request matches everything",
			req:  domain.SearchContactsRequest{},
			want: query.All(),
		},
		{
			name: "ids",
			req:  domain.SearchContactsRequest{SearchRequest: query.SearchRequest{IDs: []uuid.UUID{id1, id2}}},
			want: query.In(domain.FieldContactID, id1.String(), id2.String()),
		},
		{
			name: "single text term",
			req: domain.SearchContactsRequest{SearchRequest: query.SearchRequest{
				Search: query.TextSearch{Terms: []query.SearchTerm{{Value: "%byron%"}}},
			}},
			want: termPred("byron"),
		},
		{
			name: "text terms with or",
			req: domain.SearchContactsRequest{SearchRequest: query.SearchRequest{
				Search: query.TextSearch{
					Terms:    []query.SearchTerm{{Value: "ada"}, {Value: "  "}, {Value: "gr%"}},
					Operator: query.OperatorOr,
				},
			}},
			want: query.Or(termPred("^ada$"), termPred("^gr")),
		},
		{
			name: "unknown operator drops text clause",
			req: domain.SearchContactsRequest{
				SearchRequest: query.SearchRequest{
					Search: query.TextSearch{Terms: []query.SearchTerm{{Value: "ada"}}, Operator: "xor"},
				},
				Gender: strPtr("F"),
			},
			want: query.Eq(domain.FieldGender, "F"),
		},
		{
			name: "birthdate range and presence",
			req: domain.SearchContactsRequest{
				BornAfter:    &after,
				BornBefore:   datePtr(2000, time.January, 1),
				HasBirthdate: boolPtr(true),
			},
			want: query.And(
				query.Gt(domain.FieldBirthdate, after.UTC()),
				query.Lt(domain.FieldBirthdate, *datePtr(2000, time.January, 1)),
				query.Ne(domain.FieldBirthdate, nil),
			),
		},
		{
			name: "missing birthdate",
			req:  domain.SearchContactsRequest{HasBirthdate: boolPtr(false)},
			want: query.Eq(domain.FieldBirthdate, nil),
		},
		{
			name: "negated gender",
			req:  domain.SearchContactsRequest{Gender: strPtr("F"), NotGender: true},
			want: query.Ne(domain.FieldGender, "F"),
		},
		{
			name: "negation flag without value is ignored",
			req:  domain.SearchContactsRequest{NotGender: true},
			want: query.All(),
		},
		{
			name: "all criteria in order",
			req: domain.SearchContactsRequest{
				SearchRequest: query.SearchRequest{
					IDs:    []uuid.UUID{id1},
					Search: query.TextSearch{Terms: []query.SearchTerm{{Value: "a_a"}}},
				},
				HasBirthdate: boolPtr(true),
				Gender:       strPtr("F"),
			},
			want: query.And(
				query.In(domain.FieldContactID, id1.String()),
				termPred("^a.a$"),
				query.Ne(domain.FieldBirthdate, nil),
				query.Eq(domain.FieldGender, "F"),
			),
		},
	}

	wantCriteria := map[string]int{
		"ids":                                1,
		"single text term":                   1,
		"text terms with or":                 1,
		"unknown operator drops text clause": 1,
		"birthdate range and presence":       3,
		"missing birthdate":                  1,
		"negated gender":                     1,
		"all criteria in order":              4,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, criteria := buildFilter(tt.req)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("buildFilter mismatch (-want +got):\n%s", diff)
			}
			if want := wantCriteria[tt.name]; criteria != want {
				t.Errorf("criteria = %d; want %d", criteria, want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	req := domain.SearchContactsRequest{
		SearchRequest: query.SearchRequest{Skip: 5, Limit: 10},
		Sort: []query.SortOption[domain.ContactSort]{
			{Field: domain.SortFullName, IsDescending: true},
			{Field: "shoe_size"},
			{Field: domain.SortUpdatedOn},
		},
	}

	q, criteria := buildQuery(req)
	if criteria != 0 {
		t.Errorf("criteria = %d; want 0", criteria)
	}

	wantSort := []query.SortKey{
		{Field: domain.FieldFirstName, Desc: true},
		{Field: domain.FieldLastName, Desc: true},
		{Field: domain.FieldUpdatedOn},
	}
	if diff := cmp.Diff(wantSort, q.Sort); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
	if q.Skip != 5 || q.Limit != 10 {
		t.Errorf("window = (%d, %d); want (5, 10)", q.Skip, q.Limit)
	}
	if !q.Filter.IsAll() {
		t.Errorf("filter = %v; want all", q.Filter)
	}
}

func TestSortFields_CoverEveryLogicalField(t *testing.T) {
	logical := []domain.ContactSort{
		domain.SortBirthdate,
		domain.SortEmailAddress,
		domain.SortFullName,
		domain.SortLastNameThenFirstName,
		domain.SortPhoneNumber,
		domain.SortUpdatedOn,
	}
	for _, f := range logical {
		if len(sortFields[f]) == 0 {
			t.Errorf("logical sort field %q has no expansion", f)
		}
	}
	if diff := cmp.Diff([]string{domain.FieldLastName, domain.FieldFirstName}, sortFields[domain.SortLastNameThenFirstName]); diff != "" {
		t.Errorf("last_name_then_first_name expansion mismatch (-want +got):\n%s", diff)
	}
}
