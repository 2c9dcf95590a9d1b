package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyModelResponse is returned when the language model returns no text
	ErrEmptyModelResponse = errors.New("language model returned empty response")

	// ErrMalformedModelResponse is returned when model output cannot be parsed
	// into the expected schema
	ErrMalformedModelResponse = errors.New("language model returned malformed response")

	// ErrModelAPIFailure is returned when the language model API request fails
	ErrModelAPIFailure = errors.New("language model API request failed")

	// ErrSearchBackendFailure is returned when the product search backend fails
	ErrSearchBackendFailure = errors.New("product search backend request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
