// Package naming provides the case helpers shared by template filters and
// output path patterns. All helpers are free functions without state.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower case-folds s to lowercase.
func Lower(s string) string {
	return strings.ToLower(s)
}

// Upper converts s to uppercase.
func Upper(s string) string {
	return strings.ToUpper(s)
}

// Title capitalises every word using English casing rules.
func Title(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

// Capitalize uppercases the first rune and lowercases the rest.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	return UpperFirst(strings.ToLower(s))
}

// LowerFirst lowercases the first non-whitespace rune, leaving the rest intact.
func LowerFirst(s string) string {
	return mapFirst(s, unicode.ToLower)
}

// UpperFirst uppercases the first non-whitespace rune, leaving the rest intact.
func UpperFirst(s string) string {
	return mapFirst(s, unicode.ToUpper)
}

func mapFirst(s string, fn func(rune) rune) string {
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		size := utf8.RuneLen(r)
		return s[:i] + string(fn(r)) + s[i+size:]
	}
	return s
}

// Words splits an identifier into lowercase words at case changes, digits
// boundaries and separators ("userID" -> ["user", "id"]).
func Words(s string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// Camel joins the words of s in lowerCamelCase.
func Camel(s string) string {
	return LowerFirst(Pascal(s))
}

// Pascal joins the words of s in PascalCase.
func Pascal(s string) string {
	words := Words(s)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(UpperFirst(w))
	}
	return b.String()
}

// Snake joins the words of s with underscores.
func Snake(s string) string {
	return strings.Join(Words(s), "_")
}

// Kebab joins the words of s with hyphens.
func Kebab(s string) string {
	return strings.Join(Words(s), "-")
}

// Plural pluralises the last word of s with the English inflection rules,
// irregular nouns included (Person becomes People). A lower-case s yields a
// lower-case plural.
func Plural(s string) string {
	if s == "" {
		return ""
	}
	return inflection.Plural(s)
}
