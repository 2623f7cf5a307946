package sanitizer

import "regexp"

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	htmlTagRegex      = regexp.MustCompile(`<[^>]*>`)
	scriptStyleRegex  = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	fieldSpaceRegex   = regexp.MustCompile(`[\r\n\t ]+`)
	percentOctetRegex = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)
