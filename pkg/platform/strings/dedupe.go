// Package strings holds string helpers for query parameter parsing.
package strings

import (
	"slices"
	"strings"
)

// SplitList splits a comma-separated query value into its trimmed,
// non-empty elements, keeping the first occurrence of each.
//
//	SplitList(" 1, 2,,1 ") // []string{"1", "2"}
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	out := []string{}
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}
