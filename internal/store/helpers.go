package store

import "strings"

// isDuplicateKey reports whether err is a unique-constraint violation. The
// three supported drivers phrase this differently, so match on message text.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
