package query

import "strings"

// CompileWildcard converts a LIKE-style term into an anchored regular
// expression. '%' matches any run of characters and '_' any single character.
// A term that does not start (end) with '%' is anchored at the start (end).
//
// The body is not escaped: other regular expression metacharacters keep their
// meaning. Callers must not pass an empty term.
func CompileWildcard(term string) string {
	var b strings.Builder
	b.Grow(len(term) + 2)

	if !strings.HasPrefix(term, "%") {
		b.WriteByte('^')
	}
	b.WriteString(strings.ReplaceAll(strings.Trim(term, "%"), "_", "."))
	if !strings.HasSuffix(term, "%") {
		b.WriteByte('$')
	}

	return b.String()
}
