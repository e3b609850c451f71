package normalize

import "strings"

// Sanitize keeps printable ASCII plus newline, carriage return and tab, and
// drops backslashes so the text can be embedded in JSON and email bodies
// without escaping surprises.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			continue
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r >= 32 && r <= 126:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// cleanTicker uppercases a symbol and keeps only its first word.
func cleanTicker(s string) string {
	fields := strings.Fields(Sanitize(s))
	if len(fields) == 0 {
		return ""
	}
	t := strings.ToUpper(strings.Trim(fields[0], ",;:()[]"))
	if isSentinel(t) {
		return ""
	}
	return t
}

func isSentinel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UNKNOWN", "N/A", "NA", "NONE", "NULL", "NIL", "-", "?":
		return true
	}
	return false
}
