package util

import "strings"

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(parts ...string) string {
	var b strings.Builder
	pendingDash := false
	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			if isAlnum {
				if pendingDash && b.Len() > 0 {
					b.WriteByte('-')
				}
				pendingDash = false
				b.WriteRune(r)
			} else {
				pendingDash = true
			}
		}
		pendingDash = true
	}
	return b.String()
}
