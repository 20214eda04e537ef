package query

import (
	"strings"
)

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings. Empty entries are dropped.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// Bool parses a boolean query parameter ("true", "1"). Anything else,
// including absence, is false.
func Bool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1":
		return true
	}
	return false
}
