package domain

import "errors"

var (
	// ErrProductNotFound is returned when no source has a match for a lookup key
	ErrProductNotFound = errors.New("product not found in any source")

	// ErrSourceUnavailable is returned when a source fails after all retries
	ErrSourceUnavailable = errors.New("product source unavailable")

	// ErrMalformedResponse is returned when a source responds with an unexpected schema
	ErrMalformedResponse = errors.New("malformed source response")

	// ErrCacheMiss is returned when data is not found in cache (or is expired)
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache storage medium cannot be used
	ErrCacheUnavailable = errors.New("cache storage unavailable")

	// ErrModelUnavailable is returned when the generative model is not configured
	ErrModelUnavailable = errors.New("generative model not configured")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSessionNotFound is returned when a session id does not exist
	ErrSessionNotFound = errors.New("session not found")
)
