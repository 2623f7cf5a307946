package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/internal/proxy"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	"github.com/wpbr/reviewproxy/pkg/cache"
	"github.com/wpbr/reviewproxy/pkg/httpserver"
	"github.com/wpbr/reviewproxy/pkg/logger"
	"github.com/wpbr/reviewproxy/pkg/requestid"
)

type envelope struct {
	Data  map[string]any `json:"data"`
	Meta  map[string]any `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type upstreamServer struct {
	calls     atomic.Int32
	noReviews atomic.Bool
	down      atomic.Bool
}

func (u *upstreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	if u.down.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/business-units")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case path == "/find":
		switch r.URL.Query().Get("name") {
		case "unknown.com":
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		case "blank.com":
			_, _ = w.Write([]byte(`{"id":"   ","displayName":"Blank"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"bu-1","name":{"identifying":"acme.com"},"displayName":"Acme"}`))
	case path == "/bu-1/profileinfo":
		_, _ = w.Write([]byte(`{"trustScore":4.5}`))
	case path == "/bu-1":
		_, _ = w.Write([]byte(`{"numberOfReviews":{"total":1}}`))
	case path == "/bu-1/web-links":
		_, _ = w.Write([]byte(`{"profileUrl":"https://www.trustpilot.com/review/acme.com"}`))
	case path == "/bu-1/images/logo":
		_, _ = w.Write([]byte(`{"logoUrl":"https://cdn.example/logo.png"}`))
	case path == "/bu-1/reviews":
		if u.noReviews.Load() {
			_, _ = w.Write([]byte(`{"links":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"reviews":[{"stars":5,"text":"Great"}]}`))
	default:
		http.NotFound(w, r)
	}
}

type fixture struct {
	upstream *upstreamServer
	server   *httptest.Server
	registry *prometheus.Registry
}

func newFixture(t *testing.T, checks ...httpserver.Check) *fixture {
	t.Helper()
	up := &upstreamServer{}
	upSrv := httptest.NewServer(up)
	t.Cleanup(upSrv.Close)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	client := trustpilot.New("key",
		trustpilot.WithBaseURL(upSrv.URL+"/v1"),
		trustpilot.WithHTTPClient(upSrv.Client()),
		trustpilot.WithMetrics(m),
	)
	store := cache.NewMemoryStore(1000)
	gate := license.NewGate(license.StaticProvider{"good": license.StatusActive, "off": license.StatusInactive},
		store, license.WithMetrics(m))
	agg := reviews.NewAggregator(client, store, reviews.WithMetrics(m))

	router := proxy.Router(proxy.RouterOptions{
		Service:  proxy.NewService(gate, agg),
		Status:   client,
		Gatherer: reg,
		Checks:   checks,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &fixture{upstream: up, server: srv, registry: reg}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestRouter_ProfileFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.get(t, "/tp-api?license=good&domain=acme.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.NotEmpty(t, resp.Header.Get(requestid.Header))
	assert.Nil(t, env.Error)
	assert.Equal(t, "bu-1", env.Data["id"])
	assert.Equal(t, 4.5, env.Data["trustScore"])
	assert.Equal(t, "domain", env.Meta["path"])
	assert.Equal(t, int32(6), f.upstream.calls.Load())

	resp, env = f.get(t, "/tp-api?license=good&business_id=bu-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bu-1", env.Data["id"])
	assert.Equal(t, "business_id", env.Meta["path"])

	resp, env = f.get(t, "/tp-api?license=good&domain=acme.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "business_id", env.Meta["path"], "same domain is served from cache")
	assert.Equal(t, int32(6), f.upstream.calls.Load(), "cached requests make no upstream calls")
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		setup  func(*upstreamServer)
		status int
		code   string
	}{
		{"missing license", "/tp-api?domain=acme.com", nil, http.StatusBadRequest, "authorization_error"},
		{"inactive license", "/tp-api?license=off&domain=acme.com", nil, http.StatusForbidden, "authorization_error"},
		{"unknown license", "/tp-api?license=nope&business_id=1", nil, http.StatusForbidden, "authorization_error"},
		{"empty request", "/tp-api?license=good", nil, http.StatusBadRequest, "empty_request"},
		{"invalid domain", "/tp-api?license=good&domain=localhost", nil, http.StatusBadRequest, "invalid_domain"},
		{"not found", "/tp-api?license=good&domain=unknown.com", nil, http.StatusNotFound, "not_found"},
		{"blank business id", "/tp-api?license=good&domain=blank.com", nil, http.StatusNotFound, "not_found"},
		{"no cached domain", "/tp-api?license=good&business_id=bu-1", nil, http.StatusNotFound, "no_cached_domain"},
		{"upstream down", "/tp-api?license=good&domain=acme.com", func(u *upstreamServer) { u.down.Store(true) }, http.StatusBadGateway, "transport_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.upstream)
			}

			resp, env := f.get(t, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestRouter_AuthorizationMakesNoUpstreamCalls(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, path := range []string{
		"/tp-api?domain=acme.com",
		"/tp-api?license=off&domain=acme.com",
		"/tp-api?license=off&business_id=bu-1",
	} {
		resp, _ := f.get(t, path)
		assert.NotEqual(t, http.StatusOK, resp.StatusCode, path)
	}
	assert.Zero(t, f.upstream.calls.Load())
}

func TestRouter_NoReviews(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.upstream.noReviews.Store(true)

	resp, env := f.get(t, "/tp-api?license=good&domain=acme.com")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "no_reviews", env.Error.Code)
	assert.Equal(t, "bu-1", env.Data["id"])
	assert.Equal(t, "https://cdn.example/logo.png", env.Data["logoUrl"])
	assert.NotContains(t, env.Data, "reviews")
}

func TestRouter_SanitizesInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.get(t, "/tp-api?license=%3Cb%3Egood%3C%2Fb%3E&domain=%20acme.com%0A")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bu-1", env.Data["id"])
}

func TestRouter_Status(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resp, env := f.get(t, "/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", env.Data["status"])

	f.upstream.down.Store(true)
	_, env = f.get(t, "/status")
	assert.Equal(t, "disconnected", env.Data["status"])
}

type fixedStatus trustpilot.Status

func (s fixedStatus) PlatformStatus(context.Context) trustpilot.Status { return trustpilot.Status(s) }

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(int) {}

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestRouter_StatusRenderFailureIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	router := proxy.Router(proxy.RouterOptions{
		Status: fixedStatus(trustpilot.StatusConnected),
		Logger: logger.New(logger.WithOutput(&buf)),
	})

	router.ServeHTTP(&brokenWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, "/status", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"request failed"`)
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, `"path":"/status"`)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	ok := newFixture(t, httpserver.Check{Name: "cache", Fn: func(context.Context) error { return nil }})
	resp, err := http.Get(ok.server.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ok.server.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	failing := newFixture(t, httpserver.Check{Name: "db", Fn: func(context.Context) error { return errors.New("down") }})
	resp, err = http.Get(failing.server.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, _ = f.get(t, "/tp-api?license=good&domain=acme.com")

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	families, err := f.registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "reviewproxy_upstream_requests_total")
	assert.Contains(t, names, "reviewproxy_license_checks_total")
	assert.Contains(t, names, "reviewproxy_cache_lookups_total")
}

func TestRouter_RequestIDPropagation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/tp-api?license=good", nil)
	require.NoError(t, err)
	req.Header.Set(requestid.Header, "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(requestid.Header))
}
