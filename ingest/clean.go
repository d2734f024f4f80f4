package ingest

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw post text before vectorization: NFC unicode
// normalization, HTML entity unescaping, URL removal, and whitespace
// collapsing. Pure and deterministic; cleaning never fails, it only
// shrinks.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	cleaned := norm.NFC.String(text)
	cleaned = html.UnescapeString(cleaned)
	cleaned = urlPattern.ReplaceAllString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
