package reviews

import "errors"

var (
	// ErrNotFound means the domain search returned no business id.
	ErrNotFound = errors.New("no business found for domain")
	// ErrNoReviews accompanies a valid profile whose reviews call returned no
	// reviews field.
	ErrNoReviews      = errors.New("no reviews returned for business")
	ErrNoCachedDomain = errors.New("no domain cached for license")
	ErrInvalidDomain  = errors.New("invalid domain")
)
