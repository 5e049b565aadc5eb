package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses every whitespace run to a single space
// and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var titleSplitRegex = regexp.MustCompile(`[_\s]+`)

// TitleCase splits on underscores/whitespace, uppercases the first letter
// of each token and lowercases the rest. Empty tokens map to empty strings.
func TitleCase(s string) string {
	words := titleSplitRegex.Split(s, -1)
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(w[:size]) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

var genericNameRegex = regexp.MustCompile(`(?i)(search offers|capital one offers|exclusive coupon)`)

// IsBadName reports whether s can never be a merchant name: empty, shorter
// than two characters, or one of the known placeholder phrases.
func IsBadName(s string) bool {
	return s == "" || utf8.RuneCountInString(s) < 2 || genericNameRegex.MatchString(s)
}

var (
	noiseRegex       = regexp.MustCompile(`(?i)for you|exclusive coupon`)
	doubleSpaceRegex = regexp.MustCompile(`\s{2,}`)
)

// CleanNoise strips marketing noise phrases and collapses the double
// spaces their removal leaves behind.
func CleanNoise(s string) string {
	s = noiseRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(doubleSpaceRegex.ReplaceAllString(s, " "))
}
