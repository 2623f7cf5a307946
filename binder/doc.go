// Package binder populates request structs from HTTP input for use with
// handler.WithBinders. Query binds URL query parameters through `query`
// struct tags and can sanitise every value on the way in.
package binder
