// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("Invalid or expired token.")
	// ErrTooManyRequests indicates that the client exceeded the rate limit.
	ErrTooManyRequests = errors.New("too many requests, try again later")
)
