package proxy

import (
	"errors"
	"net/http"

	"github.com/wpbr/reviewproxy/handler"
	"github.com/wpbr/reviewproxy/internal/license"
	"github.com/wpbr/reviewproxy/internal/reviews"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
)

// ErrEmptyRequest is returned when neither a domain nor a business id was
// given.
var ErrEmptyRequest = errors.New("either domain or business_id is required")

var (
	errMissingLicense = handler.HTTPError{Code: http.StatusBadRequest, Key: "authorization_error",
		Message: "A license key is required."}
	errInactiveLicense = handler.HTTPError{Code: http.StatusForbidden, Key: "authorization_error",
		Message: "The license key is not active."}
	errEmptyRequest = handler.HTTPError{Code: http.StatusBadRequest, Key: "empty_request",
		Message: "Provide a domain or a business_id."}
	errInvalidDomain = handler.HTTPError{Code: http.StatusBadRequest, Key: "invalid_domain",
		Message: "The domain is not a valid public host name."}
	errNotFound = handler.ErrNotFound.WithMessage(
		"No results found. Enter the primary domain of your business as it appears on Trustpilot for best results.")
	errNoCachedDomain = handler.HTTPError{Code: http.StatusNotFound, Key: "no_cached_domain",
		Message: "No business has been looked up for this license yet. Search by domain first."}
	errTransport = handler.HTTPError{Code: http.StatusBadGateway, Key: "transport_error",
		Message: "The reviews platform could not be reached."}
	errDecode = handler.HTTPError{Code: http.StatusBadGateway, Key: "decode_error",
		Message: "The reviews platform returned an unreadable response."}
)

const (
	noReviewsCode    = "no_reviews"
	noReviewsMessage = "No reviews found. Although reviews may exist on the platform, none were returned from the platform API."
)

// httpError attaches the matching HTTPError to err so the envelope carries a
// stable code while the original error stays in the chain for logging.
func httpError(err error) error {
	var mapped handler.HTTPError
	switch {
	case errors.Is(err, license.ErrMissingLicense):
		mapped = errMissingLicense
	case errors.Is(err, license.ErrInactive):
		mapped = errInactiveLicense
	case errors.Is(err, ErrEmptyRequest):
		mapped = errEmptyRequest
	case errors.Is(err, reviews.ErrInvalidDomain):
		mapped = errInvalidDomain
	case errors.Is(err, reviews.ErrNotFound), errors.Is(err, trustpilot.ErrEmptyBusiness):
		mapped = errNotFound
	case errors.Is(err, reviews.ErrNoCachedDomain):
		mapped = errNoCachedDomain
	case errors.Is(err, trustpilot.ErrTransport):
		mapped = errTransport
	case errors.Is(err, trustpilot.ErrDecode):
		mapped = errDecode
	default:
		var already handler.HTTPError
		if errors.As(err, &already) {
			return err
		}
		mapped = handler.ErrInternalServerError
	}
	return errors.Join(mapped, err)
}
