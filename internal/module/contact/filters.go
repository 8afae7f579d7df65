package contact

import (
	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/query"
)

// textFields are the fields a free-text term is matched against.
var textFields = []string{
	domain.FieldEmailAddress,
	domain.FieldPhoneNumber,
	domain.FieldFirstName,
	domain.FieldLastName,
}

// sortFields expands the logical contact sort fields into stored fields.
var sortFields = query.SortMap[domain.ContactSort]{
	domain.SortBirthdate:             {domain.FieldBirthdate},
	domain.SortEmailAddress:          {domain.FieldEmailAddress},
	domain.SortFullName:              {domain.FieldFirstName, domain.FieldLastName},
	domain.SortLastNameThenFirstName: {domain.FieldLastName, domain.FieldFirstName},
	domain.SortPhoneNumber:           {domain.FieldPhoneNumber},
	domain.SortUpdatedOn:             {domain.FieldUpdatedOn},
}

// buildFilter composes every criterion present in req into one predicate and
// reports how many criteria it holds.
func buildFilter(req domain.SearchContactsRequest) (query.Predicate, int) {
	var f query.Filters
	f.Add(query.IDIn(domain.FieldContactID, req.IDs))
	f.Add(query.Text(req.Search, textFields...))
	f.Add(query.After(domain.FieldBirthdate, req.BornAfter))
	f.Add(query.Before(domain.FieldBirthdate, req.BornBefore))
	f.Add(query.Presence(domain.FieldBirthdate, req.HasBirthdate))
	f.Add(query.Exact(domain.FieldGender, req.Gender, req.NotGender))
	return f.Predicate(), f.Len()
}

// buildQuery translates req into a store-neutral query. The count of
// criteria in its filter is returned alongside.
func buildQuery(req domain.SearchContactsRequest) (query.Query, int) {
	filter, criteria := buildFilter(req)
	return query.Query{
		Filter: filter,
		Sort:   query.ExpandSort(req.Sort, sortFields),
		Skip:   req.Skip,
		Limit:  req.Limit,
	}, criteria
}
