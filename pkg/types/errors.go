package types

import "errors"

// Registration errors. Validation failures wrap one of these two kinds so
// callers can tell a startup misconfiguration from a misuse caught while
// handling a request.
var (
	ErrImproperlyConfigured = errors.New("improperly configured")
	ErrRuntime              = errors.New("runtime error")
)

// Action and backend errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidVerb     = errors.New("verb must not be empty")
	ErrInvalidActor    = errors.New("actor must not be empty")
	ErrInvalidRole     = errors.New("invalid role")
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
