// Package strutil provides string utilities for case conversion, pluralization
// and SQL naming used throughout the autofk codebase.
package strutil

import (
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------------
// Case Conversion
// -----------------------------------------------------------------------------

// ToSnakeCase converts a string to snake_case.
// Examples: userName -> user_name, UserName -> user_name, HTTPServer -> http_server
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s) + 4)

	for i, r := range s {
		if unicode.IsUpper(r) {
			// Underscore before an uppercase letter that follows a lowercase one,
			// or that starts a new word after an acronym ("HTTPServer").
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteByte('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) && prev != '_' {
					result.WriteByte('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else if r == '-' || r == ' ' {
			result.WriteByte('_')
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// -----------------------------------------------------------------------------
// Inflection
// -----------------------------------------------------------------------------

// irregularPlurals covers the common English nouns that do not follow the suffix rules.
var irregularPlurals = map[string]string{
	"person": "people",
	"man":    "men",
	"woman":  "women",
	"child":  "children",
	"mouse":  "mice",
	"goose":  "geese",
	"ox":     "oxen",
}

// uncountables are returned unchanged by Pluralize.
var uncountables = map[string]bool{
	"equipment":   true,
	"information": true,
	"money":       true,
	"news":        true,
	"series":      true,
	"species":     true,
	"sheep":       true,
	"fish":        true,
	"metadata":    true,
}

// Pluralize returns the English plural of a snake_case word.
// Only the last segment is inflected: "line_item" -> "line_items".
// Examples: user -> users, category -> categories, box -> boxes, person -> people
func Pluralize(s string) string {
	if s == "" {
		return ""
	}

	prefix, word := "", s
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		prefix, word = s[:i+1], s[i+1:]
	}
	if word == "" {
		return s
	}

	if uncountables[word] {
		return s
	}
	if p, ok := irregularPlurals[word]; ok {
		return prefix + p
	}

	switch {
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"), strings.HasSuffix(word, "z"),
		strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		return prefix + word + "es"
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return prefix + word[:len(word)-1] + "ies"
	}
	return prefix + word + "s"
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}

// -----------------------------------------------------------------------------
// SQL Naming
// -----------------------------------------------------------------------------

// SplitQualified splits a "schema.table" name into its schema and table parts.
// A bare name returns an empty schema.
// Example: SplitQualified("audit.events") -> ("audit", "events")
func SplitQualified(name string) (schema, table string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// FlattenQualified replaces every dot in a schema-qualified name with an underscore.
// Example: FlattenQualified("audit.events") -> "audit_events"
func FlattenQualified(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
