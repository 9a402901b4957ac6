package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault reads an integer from an environment-style value. Blank or
// malformed input yields def.
func ParseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
