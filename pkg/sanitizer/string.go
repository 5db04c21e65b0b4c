package sanitizer

import "strings"

// CollapseWhitespace trims s and folds every run of Unicode whitespace into a
// single ASCII space.
func CollapseWhitespace(s string) string {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return strings.Join(fields, " ")
}
