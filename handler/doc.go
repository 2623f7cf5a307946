// Package handler provides typed HTTP handlers that answer with a JSON
// envelope.
//
// A HandlerFunc receives a Context and a request value already populated by
// binders, and returns a Response:
//
//	type lookupRequest struct {
//		License string `query:"license"`
//		Domain  string `query:"domain"`
//	}
//
//	func lookup(ctx handler.Context, req lookupRequest) handler.Response {
//		profile, err := svc.Lookup(ctx, req.License, req.Domain)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(profile)
//	}
//
//	r.Get("/lookup", handler.Wrap(lookup,
//		handler.WithBinders[lookupRequest](binder.Query()),
//	))
//
// Every body has the shape {"data": ..., "meta": ..., "error": {"code", "message"}}
// with empty members omitted. HTTPError values anywhere in an error chain
// decide the status code and error code; other errors render as 500
// internal_error without leaking their text.
package handler
