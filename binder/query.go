package binder

import (
	"net/http"
	"net/url"
)

// QueryOption configures Query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	sanitize func(string) string
}

// WithSanitizer runs every string value through fn before it is assigned.
func WithSanitizer(fn func(string) string) QueryOption {
	return func(c *queryConfig) { c.sanitize = fn }
}

// Query binds URL query parameters to struct fields.
//
// Field names come from the `query` tag; `query:"-"` skips a field and an
// untagged field uses its lower-cased name. Supported kinds are string,
// signed and unsigned integers, floats, bool, pointers to those and slices
// (repeated or comma separated values).
//
//	type lookupRequest struct {
//		License    string `query:"license"`
//		Domain     string `query:"domain"`
//		BusinessID string `query:"business_id"`
//	}
func Query(opts ...QueryOption) func(r *http.Request, v any) error {
	cfg := &queryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return func(r *http.Request, v any) error {
		values := r.URL.Query()
		if cfg.sanitize != nil {
			values = sanitizeValues(values, cfg.sanitize)
		}
		return bindToStruct(v, "query", values, ErrInvalidQuery)
	}
}

func sanitizeValues(in url.Values, fn func(string) string) url.Values {
	out := make(url.Values, len(in))
	for k, vs := range in {
		clean := make([]string, len(vs))
		for i, s := range vs {
			clean[i] = fn(s)
		}
		out[k] = clean
	}
	return out
}
