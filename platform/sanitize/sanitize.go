// Package sanitize cleans free text submitted by visitors before it is
// written to the sheet or echoed into notifications.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	entityReplacer  = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", `"`, "&#39;", "'")
)

// StripHTML removes HTML tags, decodes the common entities and strips again
// so encoded tags cannot survive.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML and collapses runs of whitespace into single spaces.
func Text(s string) string {
	return whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
