// Package proxy serves the widget-facing endpoint. It checks the license,
// decides between a fresh domain lookup and the cached profile, and renders
// every outcome as a JSON envelope.
package proxy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/pkg/logger"
)

// Request holds the inbound query parameters.
type Request struct {
	License    string `query:"license"`
	Domain     string `query:"domain"`
	BusinessID string `query:"business_id"`
}

// Path names the branch a request took.
type Path string

const (
	PathDomain     Path = "domain"
	PathBusinessID Path = "business_id"
)

// Result is a served profile. Profile is set whenever the request
// succeeded, including the no-reviews case.
type Result struct {
	Path    Path
	Profile reviews.Profile
}

// Authorizer admits active licenses.
type Authorizer interface {
	Authorize(ctx context.Context, token string) error
}

// Profiles is the aggregation surface the service drives.
type Profiles interface {
	AggregateByDomain(ctx context.Context, token, domain string) (reviews.Profile, error)
	AggregateByCachedDomain(ctx context.Context, token string) (reviews.Profile, error)
	CachedProfile(ctx context.Context, token string) (reviews.Profile, bool, error)
	CachedDomain(ctx context.Context, token string) (string, bool, error)
}

// Service is stateless; all memory lives behind Authorizer and Profiles.
type Service struct {
	gate     Authorizer
	profiles Profiles
	log      *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(gate Authorizer, profiles Profiles, opts ...ServiceOption) *Service {
	s := &Service{gate: gate, profiles: profiles, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one request to completion.
//
// A domain different from the one cached for the license triggers a fresh
// aggregation. A business id, or the already cached domain, serves the
// cached profile and falls back to re-aggregating the cached domain when
// the profile has expired. The business id itself is never used as a key.
//
// reviews.ErrNoReviews is returned together with a usable Result.
func (s *Service) Handle(ctx context.Context, req Request) (Result, error) {
	if req.License == "" {
		return Result{}, license.ErrMissingLicense
	}
	if err := s.gate.Authorize(ctx, req.License); err != nil {
		return Result{}, err
	}

	cachedDomain, _, err := s.profiles.CachedDomain(ctx, req.License)
	if err != nil {
		s.log.WarnContext(ctx, "cached domain lookup failed",
			logger.Component("proxy"), logger.License(req.License), logger.Error(err))
		cachedDomain = ""
	}

	var domain string
	if req.Domain != "" {
		domain, err = reviews.NormalizeDomain(req.Domain)
		if err != nil {
			return Result{}, err
		}
	}

	switch {
	case domain != "" && domain != cachedDomain:
		profile, err := s.profiles.AggregateByDomain(ctx, req.License, domain)
		if profile == nil {
			return Result{}, err
		}
		return Result{Path: PathDomain, Profile: profile}, err

	case req.BusinessID != "" || domain != "":
		s.log.DebugContext(ctx, "serving cached profile",
			logger.Component("proxy"), logger.License(req.License), logger.BusinessID(req.BusinessID))
		return s.cachedProfile(ctx, req.License)

	default:
		return Result{}, ErrEmptyRequest
	}
}

func (s *Service) cachedProfile(ctx context.Context, token string) (Result, error) {
	profile, found, err := s.profiles.CachedProfile(ctx, token)
	if err != nil {
		s.log.WarnContext(ctx, "cached profile lookup failed",
			logger.Component("proxy"), logger.License(token), logger.Error(err))
	}
	if found {
		return Result{Path: PathBusinessID, Profile: profile}, nil
	}

	fresh, aggErr := s.profiles.AggregateByCachedDomain(ctx, token)
	if aggErr != nil && !errors.Is(aggErr, reviews.ErrNoReviews) {
		return Result{}, aggErr
	}

	profile, found, err = s.profiles.CachedProfile(ctx, token)
	if err != nil || !found {
		profile = fresh
	}
	if profile == nil {
		return Result{}, reviews.ErrNoCachedDomain
	}
	return Result{Path: PathBusinessID, Profile: profile}, aggErr
}
