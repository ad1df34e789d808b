package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects a
	// sign-in attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned when the backend reports a successful
	// sign-in but the response carries no usable session. That is an
	// invariant violation on the backend side, surfaced as an error
	// rather than a nil session.
	ErrNoSession = errors.New("backend returned no session")

	// ErrMalformedResponse is returned when a backend payload fails
	// boundary validation.
	ErrMalformedResponse = errors.New("malformed backend response")
)
