package sqlite

import "strings"

// placeholder returns the n-th bind parameter. SQLite binds positionally, so n is ignored.
func placeholder(int) string {
	return "?"
}

// placeholders returns n comma separated bind parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
