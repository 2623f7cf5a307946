package trustpilot

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// ReviewsPageSize is the largest page the reviews endpoint serves.
const ReviewsPageSize = 100

// StatusProbeDomain is searched by PlatformStatus.
const StatusProbeDomain = "trustpilot.com"

// FindBusiness searches a business unit by its domain name. The result is
// returned as is; a missing "id" is for the caller to interpret.
func (c *Client) FindBusiness(ctx context.Context, domain string) (Document, error) {
	return c.fetch(ctx, "find", "/business-units/find", url.Values{"name": {domain}})
}

// ProfileInfo loads the review-source profile. The business id is written
// back into the document so later consumers always find it.
func (c *Client) ProfileInfo(ctx context.Context, id string) (Document, error) {
	path, err := unitPath(id, "/profileinfo")
	if err != nil {
		return nil, err
	}
	doc, err := c.fetch(ctx, "profileinfo", path, nil)
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

func (c *Client) PublicProfile(ctx context.Context, id string) (Document, error) {
	path, err := unitPath(id, "")
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "public_profile", path, nil)
}

// WebLinks loads the business links for the configured locale.
func (c *Client) WebLinks(ctx context.Context, id string) (Document, error) {
	path, err := unitPath(id, "/web-links")
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "web_links", path, url.Values{"locale": {c.locale}})
}

func (c *Client) Logo(ctx context.Context, id string) (Document, error) {
	path, err := unitPath(id, "/images/logo")
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "logo", path, nil)
}

// Reviews loads the first page of reviews at the maximum page size.
func (c *Client) Reviews(ctx context.Context, id string) (Document, error) {
	path, err := unitPath(id, "/reviews")
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "reviews", path, url.Values{"perPage": {strconv.Itoa(ReviewsPageSize)}})
}

func unitPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyBusiness
	}
	return "/business-units/" + url.PathEscape(id) + suffix, nil
}

// Status is the reachability of the upstream platform.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// PlatformStatus searches a well-known domain. A failed call or a result
// without an id reports disconnected. Nothing is cached.
func (c *Client) PlatformStatus(ctx context.Context) Status {
	doc, err := c.FindBusiness(ctx, StatusProbeDomain)
	if err != nil || doc.ID() == "" {
		return StatusDisconnected
	}
	return StatusConnected
}
