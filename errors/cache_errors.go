// errors/cache_errors.go
package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("entity not found")
	ErrBackendUnavailable = errors.New("cache backend unavailable")
	ErrPredicateNotUnique = errors.New("predicate does not match a unique key")
	ErrInvalidEntityData  = errors.New("invalid entity data")
	ErrDatabaseOperation  = errors.New("database operation failed")
	ErrLimitExceeded      = errors.New("rate limit exceeded")
	ErrEntityConflict     = errors.New("entity already exists")
)

// LimitExceededError is returned when a rate bucket has no quota left.
type LimitExceededError struct {
	Bucket  string
	Limit   int
	ResetIn time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: retry in %ds", e.Bucket, e.RetryAfterSeconds())
}

func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}

// Remaining is always zero once the limit is exceeded.
func (e *LimitExceededError) Remaining() int {
	return 0
}

// RetryAfterSeconds rounds up so callers never retry early.
func (e *LimitExceededError) RetryAfterSeconds() int64 {
	secs := int64(e.ResetIn / time.Second)
	if e.ResetIn%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// NotFoundError names the entity that was looked up.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
