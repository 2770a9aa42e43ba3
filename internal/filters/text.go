package filters

import (
	"path"
	"strconv"
	"strings"
)

// NormalizePath converts s to a clean, forward-slash relative path.
// Backslashes become slashes, duplicate separators and "." segments are
// removed, and ".." segments are resolved lexically.
// Examples: `src\cli\` → src/cli, ./a//b/../c → a/c
func NormalizePath(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, `\`, "/")
	return path.Clean(s)
}

// Indent prefixes every non-blank line of s with width spaces. The first
// line is only indented when first is true, so the result can follow an
// already-indented template position.
func Indent(s string, width int, first bool) string {
	if width <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", width)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 && !first {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

// Quote wraps s in double quotes using Go string literal escaping.
func Quote(s string) string {
	return strconv.Quote(s)
}
