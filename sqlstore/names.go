package sqlstore

import (
	"fmt"
	"strings"
)

const maxIdentifierLen = 63

// SanitizeTableName validates a table name (optionally schema-qualified) for safe interpolation into SQL.
func SanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", ErrTableNameRequired
	}
	for _, part := range strings.Split(name, ".") {
		if !validIdentifier(part) {
			return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
	}

	return name, nil
}

func validIdentifier(part string) bool {
	if part == "" || len(part) > maxIdentifierLen {
		return false
	}
	if part[0] >= '0' && part[0] <= '9' {
		return false
	}
	for _, r := range part {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}

		return false
	}

	return true
}
