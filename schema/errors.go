package schema

import "errors"

var (
	// ErrAnimationActive indicates a routine is already playing on the session.
	ErrAnimationActive = errors.New("animation already running")
	// ErrInputDisabled indicates the session does not accept input right now.
	ErrInputDisabled = errors.New("input disabled")
	// ErrSessionNotFound indicates an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidViewport indicates a non-positive canvas size in a request.
	ErrInvalidViewport = errors.New("invalid viewport")
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidUser indicates a user name unfit for the prompt.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidHostname indicates a hostname unfit for the prompt.
	ErrInvalidHostname = errors.New("invalid hostname")
)
