package engine

import "errors"

var (
	// ErrAdvanceLoop indicates advancement kept firing past the transition cap.
	ErrAdvanceLoop = errors.New("phase advancement did not settle")
	// ErrRandRequired indicates a missing random source.
	ErrRandRequired = errors.New("random source is required")
)

// nonRetryableError wraps an error to signal that recomputing the update from
// a fresh snapshot cannot help: the rules themselves or the stored log are
// inconsistent.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable returns true from IsNonRetryable checks.
func (e *nonRetryableError) NonRetryable() bool { return true }

// wrapNonRetryable marks an error as non-retryable.
func wrapNonRetryable(err error) error {
	if err == nil || IsNonRetryable(err) {
		return err
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable returns true when the error (or any error in its chain)
// signals an invariant violation. Callers abort the update and log it.
func IsNonRetryable(err error) bool {
	var target interface{ NonRetryable() bool }
	if errors.As(err, &target) {
		return target.NonRetryable()
	}
	return false
}
