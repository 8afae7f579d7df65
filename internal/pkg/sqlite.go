package pkg

import (
	"database/sql/driver"
	"fmt"
	"regexp"

	sqlite "github.com/glebarez/go-sqlite"
)

// SQLite parses "X REGEXP Y" as regexp(Y, X) but ships no implementation.
// The function is registered on the driver once, before any connection is
// opened, and is visible to every SQLite connection the process creates.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, sqliteRegexp)
}

// sqliteRegexp reports whether the subject (second argument) matches the Go
// regular expression in the first argument. A NULL subject never matches.
func sqliteRegexp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := textValue(args[0])
	if !ok {
		return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
	}
	subject, ok := textValue(args[1])
	if !ok {
		return false, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexp: %w", err)
	}
	return re.MatchString(subject), nil
}

func textValue(v driver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
