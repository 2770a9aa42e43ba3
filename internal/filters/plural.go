package filters

import (
	"strings"
	"unicode"
)

var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"tooth":  "teeth",
	"foot":   "feet",
	"mouse":  "mice",
	"goose":  "geese",
	"datum":  "data",
	"index":  "indices",
}

// Pluralize converts a singular English noun to its plural form using
// common rules. It is meant for identifiers (user → users), not prose.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	if plural, ok := irregularPlurals[lower]; ok {
		return preserveCase(word, plural)
	}

	// s, x, z, ch, sh take "es"
	for _, suffix := range []string{"s", "x", "z", "ch", "sh"} {
		if strings.HasSuffix(lower, suffix) {
			return word + caseSuffix(word, "es")
		}
	}

	// consonant + y → ies
	if strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]) {
		return word[:len(word)-1] + caseSuffix(word, "ies")
	}

	// consonant + o → oes, with a few exceptions
	if strings.HasSuffix(lower, "o") && len(lower) > 1 && !isVowel(lower[len(lower)-2]) {
		for _, exc := range []string{"photo", "piano", "halo", "repo", "demo"} {
			if strings.HasSuffix(lower, exc) {
				return word + caseSuffix(word, "s")
			}
		}
		return word + caseSuffix(word, "es")
	}

	if strings.HasSuffix(lower, "fe") {
		return word[:len(word)-2] + caseSuffix(word, "ves")
	}
	if strings.HasSuffix(lower, "f") {
		return word[:len(word)-1] + caseSuffix(word, "ves")
	}

	return word + caseSuffix(word, "s")
}

// caseSuffix matches the suffix case to an all-caps word.
func caseSuffix(word, suffix string) string {
	if isAllUpper(word) {
		return strings.ToUpper(suffix)
	}
	return suffix
}

func preserveCase(original, plural string) string {
	if isAllUpper(original) {
		return strings.ToUpper(plural)
	}
	if unicode.IsUpper([]rune(original)[0]) {
		return upperFirst(plural)
	}
	return plural
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
