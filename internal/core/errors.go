package core

import (
	"errors"
	"fmt"
)

// Errors returned by the services. The API maps them to status codes with
// errors.Is.
var (
	ErrInvalidID   = errors.New("invalid id")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("database not configured")

	// Project lookups report a foreign project the same way as a missing one.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrChatNotFound    = fmt.Errorf("chat %w", ErrNotFound)
)
