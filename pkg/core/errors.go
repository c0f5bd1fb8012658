package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every lookup failure, via errors.Is.
var ErrNotFound = errors.New("not found")

// Lookup failures. Deletions never report the entity being deleted as
// missing, only its required ancestors.
var (
	ErrConfigNotFound      = fmt.Errorf("config file %w", ErrNotFound)
	ErrWorkspaceNotFound   = fmt.Errorf("workspace %w", ErrNotFound)
	ErrCollectionNotFound  = fmt.Errorf("collection %w", ErrNotFound)
	ErrRequestNotFound     = fmt.Errorf("request %w", ErrNotFound)
	ErrEnvironmentNotFound = fmt.Errorf("environment %w", ErrNotFound)
)

// LookupError carries the identifier that could not be resolved.
type LookupError struct {
	Kind error  // One of the Err*NotFound sentinels
	ID   string // Identifier or path that was looked up
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.ID)
}

func (e *LookupError) Unwrap() error { return e.Kind }

func notFound(kind error, id string) error {
	return &LookupError{Kind: kind, ID: id}
}
