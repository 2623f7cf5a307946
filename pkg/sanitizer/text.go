package sanitizer

import (
	"strings"
	"unicode/utf8"
)

// TextField cleans a single-line value taken from a query string or form:
//
//   - invalid UTF-8 yields an empty string
//   - script and style blocks are removed with their content, other tags
//     are stripped
//   - runs of spaces, tabs and line breaks collapse to one space
//   - percent-encoded octets such as %0A are removed
//   - the result is trimmed
//
// Entities are left encoded, so "&amp;" stays as is.
func TextField(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}
	s = RemoveNullBytes(s)

	if strings.Contains(s, "<") {
		s = scriptStyleRegex.ReplaceAllString(s, "")
		s = htmlTagRegex.ReplaceAllString(s, "")
		// A lone "<" that opened no tag survives; drop it.
		s = strings.ReplaceAll(s, "<", "")
	}

	s = strings.TrimSpace(fieldSpaceRegex.ReplaceAllString(s, " "))

	if percentOctetRegex.MatchString(s) {
		s = percentOctetRegex.ReplaceAllString(s, "")
		s = RemoveExtraWhitespace(s)
	}

	return RemoveControlChars(s)
}

// TextFieldMax is TextField followed by MaxLength.
func TextFieldMax(maxLen int) func(string) string {
	return Compose(TextField, MaxLengthOf(maxLen))
}
