// Package trustpilot is a thin client for the Trustpilot business-units API.
// Responses are returned as untyped JSON objects; callers decide what shape
// they need.
package trustpilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/pkg/logger"
)

// Document is one decoded upstream JSON object.
type Document map[string]any

// ID returns the "id" field with surrounding whitespace removed, or "" when
// it is absent or not a string.
func (d Document) ID() string {
	if d == nil {
		return ""
	}
	id, _ := d["id"].(string)
	return strings.TrimSpace(id)
}

// Client calls the API. It holds no per-request state and is safe for
// concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	locale  string
	timeout time.Duration
	http    *http.Client
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New creates a client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		locale:  DefaultLocale,
		timeout: DefaultTimeout,
		http:    cleanhttp.DefaultPooledClient(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locale returns the tag sent with web-links calls.
func (c *Client) Locale() string { return c.locale }

// Fetch issues a GET for path under the base URL. The apikey parameter is
// always set. There are no retries.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (Document, error) {
	return c.fetch(ctx, "custom", path, query)
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, query url.Values) (Document, error) {
	start := time.Now()
	doc, err := c.do(ctx, endpoint, path, query)
	elapsed := time.Since(start)

	outcome := "ok"
	var fe *FetchError
	if errors.As(err, &fe) {
		outcome = string(fe.Kind)
	}
	c.metrics.ObserveUpstream(endpoint, outcome, elapsed)
	c.log.DebugContext(ctx, "upstream call",
		logger.Component("trustpilot"),
		logger.Endpoint(endpoint),
		logger.Status(outcome),
		logger.Duration(elapsed),
		logger.Error(err),
	)
	return doc, err
}

func (c *Client) do(ctx context.Context, endpoint, path string, query url.Values) (Document, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)
	target := c.baseURL + path + "?" + q.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if doc == nil {
		return nil, &FetchError{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New("null body")}
	}
	return doc, nil
}
