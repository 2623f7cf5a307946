package reviews_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wpbr/reviewproxy/internal/trustpilot"
)

type fakeUpstream struct {
	mu     sync.Mutex
	docs   map[string]trustpilot.Document
	errs   map[string]error
	delays map[string]time.Duration
	calls  atomic.Int32
	seen   []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		docs: map[string]trustpilot.Document{
			"find":           {"id": "bu-1", "name": "Acme", "displayName": "Acme Inc"},
			"profileinfo":    {"id": "bu-1", "trustScore": 4.5},
			"public_profile": {"numberOfReviews": map[string]any{"total": float64(2)}},
			"web_links":      {"profileUrl": "https://www.trustpilot.com/review/acme.com"},
			"logo":           {"logoUrl": "https://cdn.example/logo.png"},
			"reviews": {"reviews": []any{
				map[string]any{"consumer": map[string]any{"displayName": "Ann"}, "stars": float64(5), "text": "Great", "createdAt": "2024-01-01T00:00:00Z"},
			}},
		},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
	}
}

func (f *fakeUpstream) set(endpoint string, doc trustpilot.Document) *fakeUpstream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[endpoint] = doc
	return f
}

func (f *fakeUpstream) fail(endpoint string, err error) *fakeUpstream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[endpoint] = err
	return f
}

func (f *fakeUpstream) delay(endpoint string, d time.Duration) *fakeUpstream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[endpoint] = d
	return f
}

func (f *fakeUpstream) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func (f *fakeUpstream) call(ctx context.Context, endpoint string) (trustpilot.Document, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, endpoint)
	doc, err, d := f.docs[endpoint], f.errs[endpoint], f.delays[endpoint]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make(trustpilot.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (f *fakeUpstream) FindBusiness(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "find")
}

func (f *fakeUpstream) ProfileInfo(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "profileinfo")
}

func (f *fakeUpstream) PublicProfile(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "public_profile")
}

func (f *fakeUpstream) WebLinks(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "web_links")
}

func (f *fakeUpstream) Logo(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "logo")
}

func (f *fakeUpstream) Reviews(ctx context.Context, _ string) (trustpilot.Document, error) {
	return f.call(ctx, "reviews")
}
