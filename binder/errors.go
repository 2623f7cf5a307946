package binder

import "errors"

var (
	ErrInvalidQuery = errors.New("invalid query parameter")
	// ErrBinderNotApplicable lets a binder opt out for a request it cannot
	// handle; the handler moves on to the next binder.
	ErrBinderNotApplicable = errors.New("binder not applicable")
)
