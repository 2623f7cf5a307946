package license

import "errors"

var (
	ErrMissingLicense = errors.New("license key is required")
	ErrInactive       = errors.New("license is not active")
	ErrInvalidKeys    = errors.New("invalid static license keys")
	ErrProvider       = errors.New("license provider failed")
)
