package reviews

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain reduces user input such as "https://Example.com/path" to a
// lower-case host name. Hosts that are bare public suffixes, IP addresses or
// use an unlisted TLD are rejected with ErrInvalidDomain.
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidDomain
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidDomain
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", ErrInvalidDomain
	}

	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		return "", ErrInvalidDomain
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", ErrInvalidDomain
	}
	return host, nil
}
