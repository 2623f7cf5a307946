package cache

import "errors"

var (
	ErrEmptyKey    = errors.New("cache key must not be empty")
	ErrInvalidTTL  = errors.New("cache ttl must be positive")
	ErrEncode      = errors.New("failed to encode cache value")
	ErrDecode      = errors.New("failed to decode cache value")
	ErrTTLMismatch = errors.New("namespaces written together must share a ttl")
)
