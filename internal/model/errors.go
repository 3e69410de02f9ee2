package model

import (
	"errors"
	"fmt"
)

// ValidationError reports input that cannot be accepted. Nothing is written.
type ValidationError struct {
	Field   string
	Message string
	Err     error // optional sentinel naming the failed rule
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an operation on a missing record.
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string // used instead of ID for lookups by name
}

func (e NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// BatchResult summarizes a batch where items succeed or fail independently.
type BatchResult struct {
	BatchID      string
	SuccessCount int
	ErrorCount   int
	Skipped      int
}

// Total returns the number of items seen.
func (r BatchResult) Total() int {
	return r.SuccessCount + r.ErrorCount + r.Skipped
}

func (r BatchResult) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", r.SuccessCount, r.ErrorCount, r.Skipped)
}
