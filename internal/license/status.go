// Package license decides whether a subscriber token may use the proxy.
//
// A Gate memoizes the answer of a Provider per token for a fixed window so
// the licensing backend is consulted at most once per window. Any status
// other than StatusActive denies the request.
package license

import (
	"context"
	"strings"
)

// Status is the state of a license as reported by a Provider.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusUnknown  Status = "unknown"
)

// ParseStatus maps a stored or remote value onto a Status. Unrecognised
// values are StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive
	case StatusInactive:
		return StatusInactive
	default:
		return StatusUnknown
	}
}

func (s Status) String() string { return string(s) }

// Provider reports the current status of a token.
type Provider interface {
	LicenseStatus(ctx context.Context, token string) (Status, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, token string) (Status, error)

func (f ProviderFunc) LicenseStatus(ctx context.Context, token string) (Status, error) {
	return f(ctx, token)
}
