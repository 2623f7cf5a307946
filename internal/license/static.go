package license

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StaticProvider answers from a fixed table. Tokens that are not listed are
// inactive.
type StaticProvider map[string]Status

func (p StaticProvider) LicenseStatus(_ context.Context, token string) (Status, error) {
	if s, ok := p[token]; ok {
		return s, nil
	}
	return StatusInactive, nil
}

// ParseStaticKeys reads a comma-separated list of "token" or "token:status"
// entries. A bare token is active.
func ParseStaticKeys(entries []string) (StaticProvider, error) {
	p := StaticProvider{}
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		token, status, hasStatus := strings.Cut(raw, ":")
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, errors.Join(ErrInvalidKeys, fmt.Errorf("empty token in %q", raw))
		}
		s := StatusActive
		if hasStatus {
			s = ParseStatus(status)
		}
		p[token] = s
	}
	return p, nil
}
