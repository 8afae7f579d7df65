package query

// SortKey orders results by one physical field.
type SortKey struct {
	Field string
	Desc  bool
}

// SortMap maps each logical sort field to the physical fields it expands to,
// in priority order.
type SortMap[F comparable] map[F][]string

// ExpandSort concatenates, in request order, the physical keys of every option.
// All keys produced by one option share its direction. Options whose field is
// not in m are skipped.
func ExpandSort[F ~string](opts []SortOption[F], m SortMap[F]) []SortKey {
	var keys []SortKey
	for _, opt := range opts {
		fields, ok := m[opt.Field]
		if !ok {
			continue
		}
		for _, f := range fields {
			keys = append(keys, SortKey{Field: f, Desc: opt.IsDescending})
		}
	}
	return keys
}
