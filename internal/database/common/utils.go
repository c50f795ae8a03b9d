package common

import (
	"fmt"
	"regexp"
	"strings"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTableName rejects names that cannot be safely interpolated into
// statements that don't accept bind parameters (PRAGMA, identifier quoting).
func ValidateTableName(name string) error {
	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("invalid table name: %s", name)
	}
	return nil
}

// BaseType lower-cases a declared type and strips its length/precision,
// e.g. "VARCHAR(255)" -> "varchar", "numeric(10, 2)" -> "numeric".
func BaseType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if idx := strings.Index(t, "("); idx > 0 {
		t = strings.TrimSpace(t[:idx])
	}
	return strings.TrimSpace(strings.TrimSuffix(t, " unsigned"))
}

// MapType resolves a declared type through a dialect table, falling back to
// the base type itself so unknown types pass through.
func MapType(typeMap map[string]string, dbType string) string {
	base := BaseType(dbType)
	if mapped, ok := typeMap[base]; ok {
		return mapped
	}
	return base
}
