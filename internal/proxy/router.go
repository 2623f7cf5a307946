package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wpbr/reviewproxy/binder"
	"github.com/wpbr/reviewproxy/handler"
	"github.com/wpbr/reviewproxy/internal/metrics"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	"github.com/wpbr/reviewproxy/pkg/clientip"
	"github.com/wpbr/reviewproxy/pkg/httpserver"
	"github.com/wpbr/reviewproxy/pkg/logger"
	"github.com/wpbr/reviewproxy/pkg/requestid"
	"github.com/wpbr/reviewproxy/pkg/sanitizer"
)

// StatusChecker reports upstream reachability.
type StatusChecker interface {
	PlatformStatus(ctx context.Context) trustpilot.Status
}

// RouterOptions lists what the router mounts. Service is required; the
// rest are mounted only when set.
type RouterOptions struct {
	Service *Service
	Status  StatusChecker

	// Gatherer backs /metrics.
	Gatherer prometheus.Gatherer

	// Checks back /health/ready.
	Checks           []httpserver.Check
	ReadinessTimeout time.Duration

	Logger *slog.Logger
}

// Router builds the HTTP surface:
//
//	GET /tp-api        license, domain and business_id query parameters
//	GET /status        upstream platform status
//	GET /health/live   liveness
//	GET /health/ready  readiness
//	GET /metrics       Prometheus exposition
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/tp-api", handler.Wrap(profileHandler(opts.Service, log),
		handler.WithBinders[Request](binder.Query(binder.WithSanitizer(sanitizer.TextField))),
		handler.WithErrorHandler[Request](handler.NewErrorHandler(log)),
	))

	if opts.Status != nil {
		r.Get("/status", handler.Wrap(statusHandler(opts.Status),
			handler.WithErrorHandler[struct{}](handler.NewErrorHandler(log)),
		))
	}

	r.Route("/health", func(h chi.Router) {
		h.Get("/live", httpserver.LivenessHandler())
		h.Get("/ready", httpserver.ReadinessHandler(log, opts.ReadinessTimeout, opts.Checks...))
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer))
	}

	return r
}

func profileHandler(svc *Service, log *slog.Logger) handler.HandlerFunc[Request] {
	return func(ctx handler.Context, req Request) handler.Response {
		start := time.Now()
		res, err := svc.Handle(ctx, req)

		attrs := []slog.Attr{
			logger.Component("proxy"),
			logger.License(req.License),
			logger.Duration(time.Since(start)),
		}
		if req.Domain != "" {
			attrs = append(attrs, logger.Domain(req.Domain))
		}

		if errors.Is(err, reviews.ErrNoReviews) && res.Profile != nil {
			log.LogAttrs(ctx, slog.LevelInfo, "profile served without reviews", append(attrs, slog.String("path", string(res.Path)))...)
			return handler.JSON(res.Profile,
				handler.WithJSONMeta(map[string]any{"path": res.Path}),
				handler.WithJSONWarning(noReviewsCode, noReviewsMessage),
			)
		}
		if err != nil {
			mapped := httpError(err)
			level := slog.LevelWarn
			var he handler.HTTPError
			if errors.As(mapped, &he) && he.Code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(ctx, level, "profile request failed", append(attrs, logger.Error(err))...)
			return handler.JSONError(mapped)
		}

		log.LogAttrs(ctx, slog.LevelDebug, "profile served", append(attrs, slog.String("path", string(res.Path)))...)
		return handler.JSON(res.Profile, handler.WithJSONMeta(map[string]any{"path": res.Path}))
	}
}

type statusBody struct {
	Status trustpilot.Status `json:"status"`
}

func statusHandler(checker StatusChecker) handler.HandlerFunc[struct{}] {
	return func(ctx handler.Context, _ struct{}) handler.Response {
		return handler.JSON(statusBody{Status: checker.PlatformStatus(ctx)})
	}
}
