package trustpilot

import (
	"errors"
	"fmt"
)

var (
	ErrTransport     = errors.New("upstream request failed")
	ErrDecode        = errors.New("upstream response is not a JSON object")
	ErrEmptyBusiness = errors.New("business id must not be empty")
)

// Kind classifies a failed upstream call.
type Kind string

const (
	KindTransport Kind = "transport"
	KindDecode    Kind = "decode"
)

// FetchError describes a failed call. It matches ErrTransport or ErrDecode
// under errors.Is, depending on Kind.
type FetchError struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("trustpilot %s: %s failure", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}
