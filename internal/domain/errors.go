package domain

import (
	"errors"
	"fmt"
)

// Registry failure taxonomy. All of these are synchronous validation
// failures: the call that raised one left no state behind.
var (
	// ErrUnauthorized covers both gate rejections and ownership-check
	// rejections inside the registries.
	ErrUnauthorized = errors.New("unauthorized")

	ErrAccountAlreadyExists      = errors.New("account already exists for principal")
	ErrAccountHasActiveResources = errors.New("account still owns resources")

	ErrInvalidSpaceName   = errors.New("space name must be 3 to 10 characters")
	ErrSpaceAlreadyExists = errors.New("space name already registered")
	ErrSpaceLimitReached  = errors.New("sub space limit reached for parent")

	ErrInsufficientFee = errors.New("attached value does not equal mint fee")
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}
