package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// EDDProvider asks an Easy Digital Downloads store running the Software
// Licensing add-on for the state of a key.
type EDDProvider struct {
	storeURL string
	itemID   string
	siteURL  string
	timeout  time.Duration
	http     *http.Client
}

// EDDOption configures an EDDProvider.
type EDDOption func(*EDDProvider)

// WithEDDItemID restricts the check to one download.
func WithEDDItemID(id string) EDDOption {
	return func(p *EDDProvider) { p.itemID = id }
}

// WithEDDSiteURL sends the url parameter EDD uses for activation checks.
func WithEDDSiteURL(u string) EDDOption {
	return func(p *EDDProvider) { p.siteURL = u }
}

func WithEDDTimeout(d time.Duration) EDDOption {
	return func(p *EDDProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithEDDHTTPClient(hc *http.Client) EDDOption {
	return func(p *EDDProvider) {
		if hc != nil {
			p.http = hc
		}
	}
}

func NewEDDProvider(storeURL string, opts ...EDDOption) *EDDProvider {
	p := &EDDProvider{
		storeURL: strings.TrimRight(storeURL, "/"),
		timeout:  10 * time.Second,
		http:     cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type eddResponse struct {
	Success bool   `json:"success"`
	License string `json:"license"`
}

// eddInactive lists the license states EDD reports for keys that exist but
// may not be used.
var eddInactive = map[string]bool{
	"invalid":             true,
	"inactive":            true,
	"expired":             true,
	"disabled":            true,
	"revoked":             true,
	"site_inactive":       true,
	"missing":             true,
	"key_mismatch":        true,
	"item_name_mismatch":  true,
	"invalid_item_id":     true,
	"no_activations_left": true,
}

func (p *EDDProvider) LicenseStatus(ctx context.Context, token string) (Status, error) {
	q := url.Values{}
	q.Set("edd_action", "check_license")
	q.Set("license", token)
	if p.itemID != "" {
		q.Set("item_id", p.itemID)
	}
	if p.siteURL != "" {
		q.Set("url", p.siteURL)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.storeURL+"/?"+q.Encode(), nil)
	if err != nil {
		return StatusUnknown, errors.Join(ErrProvider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return StatusUnknown, errors.Join(ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return StatusUnknown, errors.Join(ErrProvider, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body eddResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return StatusUnknown, errors.Join(ErrProvider, err)
	}

	state := strings.ToLower(strings.TrimSpace(body.License))
	switch {
	case state == "valid":
		return StatusActive, nil
	case eddInactive[state]:
		return StatusInactive, nil
	default:
		return StatusUnknown, nil
	}
}
