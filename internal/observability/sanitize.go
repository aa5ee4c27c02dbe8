package observability

import "unicode"

// sanitize drops control characters and caps the rune count so request data cannot
// forge log lines.
func sanitize(value string, limit int) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return string(out)
}

func sanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return sanitize(route, 180)
}
