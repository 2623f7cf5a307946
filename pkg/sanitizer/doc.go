// Package sanitizer cleans untrusted string input before it reaches business
// logic or log output.
//
// TextField is the entry point for query parameters: it rejects invalid
// UTF-8, strips markup, collapses whitespace and removes percent-encoded
// octets. The smaller helpers (Trim, StripHTML, SingleLine, MaxLength and
// friends) can be chained with Apply or Compose:
//
//	clean := sanitizer.Compose(
//	    sanitizer.TextField,
//	    sanitizer.ToLower,
//	    sanitizer.MaxLengthOf(253),
//	)
//	domain := clean(r.URL.Query().Get("domain"))
package sanitizer
