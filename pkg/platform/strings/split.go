// Package strings holds small helpers for comma-separated settings and
// query parameters.
package strings

import "strings"

// SplitList splits raw on commas, trims each item and drops blanks and
// repeats while keeping first-seen order. It returns nil when nothing is left.
func SplitList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
