package trustpilot

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wpbr/reviewproxy/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.trustpilot.com/v1"
	DefaultTimeout = 10 * time.Second
	DefaultLocale  = "en-US"

	// maxBodySize caps decoded upstream bodies.
	maxBodySize = 10 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Trailing slashes are dropped.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every upstream call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLocale sets the locale sent with the web-links call. Both "en_US" and
// "en-US" are accepted. An unparsable value leaves the default in place.
func WithLocale(locale string) Option {
	return func(c *Client) {
		if tag, ok := CanonicalLocale(locale); ok {
			c.locale = tag
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// CanonicalLocale converts a POSIX or BCP 47 locale into the hyphenated tag
// the API expects, e.g. "en_US" becomes "en-US".
func CanonicalLocale(locale string) (string, bool) {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return "", false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}
