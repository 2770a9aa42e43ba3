// Package filters implements the string transforms available to templates.
//
// Every function is pure and total: any input string produces an output,
// and the empty string maps to the empty string.
package filters

import (
	"strings"
	"unicode"
)

// acronyms are rendered all-caps by PascalCase and CamelCase.
var acronyms = map[string]string{
	"id":    "ID",
	"url":   "URL",
	"uri":   "URI",
	"http":  "HTTP",
	"https": "HTTPS",
	"api":   "API",
	"uuid":  "UUID",
	"sql":   "SQL",
	"html":  "HTML",
	"css":   "CSS",
	"json":  "JSON",
	"xml":   "XML",
	"ip":    "IP",
	"tcp":   "TCP",
	"udp":   "UDP",
	"tls":   "TLS",
	"ssl":   "SSL",
	"db":    "DB",
	"ui":    "UI",
	"os":    "OS",
	"cli":   "CLI",
	"jwt":   "JWT",
	"grpc":  "GRPC",
}

// Words splits s into its component words. Any rune that is not a letter
// or digit separates words, and so do case boundaries:
//
//	"my-project"  → [my project]
//	"userName"    → [user Name]
//	"HTTPServer"  → [HTTP Server]
//	"api_v2"      → [api v2]
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1

	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if unicode.IsUpper(r) {
			prev := runes[i-1]
			// lower→Upper starts a word; so does the last capital of an
			// acronym when a lowercase letter follows it (HTTPServer).
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush(i)
				start = i
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush(i)
				start = i
			}
		}
	}
	flush(len(runes))
	return words
}

// SnakeCase converts s to snake_case.
// Examples: UserName → user_name, my-project → my_project, HTTPServer → http_server
func SnakeCase(s string) string {
	return joinLower(Words(s), "_")
}

// KebabCase converts s to kebab-case.
// Examples: UserName → user-name, my_project → my-project
func KebabCase(s string) string {
	return joinLower(Words(s), "-")
}

// ShoutyCase converts s to SHOUTY_SNAKE_CASE.
// Examples: my-project → MY_PROJECT, databaseURL → DATABASE_URL
func ShoutyCase(s string) string {
	return strings.ToUpper(SnakeCase(s))
}

// PascalCase converts s to PascalCase, keeping common acronyms all-caps.
// Examples: user_name → UserName, user_id → UserID, my-api → MyAPI
func PascalCase(s string) string {
	words := Words(s)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(capitalizeWord(w))
	}
	return b.String()
}

// CamelCase converts s to camelCase.
// Examples: user_name → userName, UserID → userID, api_server → apiServer
func CamelCase(s string) string {
	words := Words(s)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(capitalizeWord(w))
	}
	return b.String()
}

// TitleCase converts s to space separated Title Case.
// Examples: my-project → My Project, api_server → Api Server
func TitleCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = upperFirst(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// Title capitalizes the first letter of each whitespace separated word and
// lowercases the rest, leaving separators untouched.
func Title(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = upperFirst(strings.ToLower(f))
	}
	return strings.Join(fields, " ")
}

// Capitalize uppercases the first letter of s and lowercases the rest.
func Capitalize(s string) string {
	return upperFirst(strings.ToLower(s))
}

// PackageName converts s into a Go package name: lowercase letters and
// digits only.
// Examples: my-project → myproject, API_Server → apiserver
func PackageName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func capitalizeWord(w string) string {
	lower := strings.ToLower(w)
	if acronym, ok := acronyms[lower]; ok {
		return acronym
	}
	return upperFirst(lower)
}

func upperFirst(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func joinLower(words []string, sep string) string {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}
