// Package clientip resolves the address of the caller behind proxies and
// exposes it to logs.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are consulted in order before RemoteAddr. Each must carry a
// parsable address to be used.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP"}

// GetIP returns the caller's address. The first valid entry of
// X-Forwarded-For is used after the single-value proxy headers; RemoteAddr
// is the fallback. An unparsable request yields "".
func GetIP(r *http.Request) string {
	for _, h := range proxyHeaders {
		if ip := parseIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for candidate := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
