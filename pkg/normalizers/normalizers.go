// Package normalizers provides the field normalization functions applied at the ingestion
// boundary and before comparisons.
package normalizers

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("trim", Trim)
	Register("lowercase", Lowercase)
	Register("uppercase", Uppercase)
	Register("nfc", NFC)
	Register("casefold", CaseFold)
	Register("collapse_whitespace", CollapseWhitespace)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Names returns the registered normalizer names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports the first name that is not registered.
func Validate(names ...string) error {
	for _, name := range names {
		if _, ok := registry[name]; !ok {
			return fmt.Errorf("unknown normalizer %q (available: %s)", name, strings.Join(Names(), ", "))
		}
	}
	return nil
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Trim removes leading and trailing whitespace, including a UTF-8 byte order mark
func Trim(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Uppercase converts string to uppercase
func Uppercase(s string) string {
	return strings.ToUpper(s)
}

// NFC composes the string into Unicode normalization form C so that visually identical
// values compare equal regardless of how accents were encoded.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// CaseFold applies full Unicode case folding. Two strings are case-insensitively equal
// iff their folded forms are equal.
func CaseFold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// CollapseWhitespace replaces runs of whitespace with a single space
func CollapseWhitespace(s string) string {
	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		result.WriteRune(r)
		prevSpace = false
	}
	return result.String()
}
