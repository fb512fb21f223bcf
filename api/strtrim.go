package api

import (
	"strings"
)

// TrimToRect cuts s to at most maxHeight lines of maxWidth bytes, marking
// every cut with "[...]".
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}
	var res strings.Builder
	for i, line := range lines {
		if i > 0 {
			res.WriteString("\n")
		}
		if len(line) > maxWidth {
			res.WriteString(line[:maxWidth] + "[...]")
		} else {
			res.WriteString(line)
		}
	}
	if cut {
		res.WriteString("\n[...]")
	}
	return res.String()
}
