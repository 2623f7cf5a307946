// Package requestid tags every inbound request with an identifier.
//
// Middleware reads X-Request-ID from the request, replaces it with a fresh
// UUID when it is missing or malformed, echoes it back in the response and
// stores it in the request context. FromContext reads it back and
// LogExtractor plugs it into the logger so every log line of a request
// carries the same request_id.
package requestid
