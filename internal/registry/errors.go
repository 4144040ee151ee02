package registry

import "errors"

// Sentinel errors for registry operations.
var (
	ErrDuplicateServer = errors.New("server already registered")
	ErrUnknownServer   = errors.New("server not registered")
	ErrEmptyName       = errors.New("server name cannot be empty")
)
