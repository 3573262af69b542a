package ledger

import (
	"errors"
	"fmt"
)

// Business-condition errors. These are expected outcomes of domain
// operations, returned as values and mapped to HTTP statuses by the caller.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PersistenceError wraps an unexpected store fault (connectivity loss,
// timeout, constraint machinery failure). It is the only error kind a caller
// should retry. The wrapped error is kept for logs; user-facing layers must
// not echo it verbatim.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// wrap passes business errors through untouched and folds everything else
// into a PersistenceError tagged with the failing operation.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrInvalidCredentials):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
