// Package apperr defines the error kinds shared by the fill engine.
//
// Kinds are sentinel errors; an *Error carries a kind, the failing operation
// and the underlying cause, and matches both through errors.Is.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNavigation      = errors.New("navigation error")
	ErrTimeout         = errors.New("timeout")
	ErrOracle          = errors.New("oracle error")
	ErrMappingParse    = errors.New("mapping parse error")
	ErrMappingSchema   = errors.New("mapping schema error")
	ErrChallengeSolve  = errors.New("challenge solve error")
	ErrFieldFill       = errors.New("field fill error")
	ErrSubmission      = errors.New("submission error")
	ErrElementNotFound = errors.New("element not found")
)

type Error struct {
	Kind error
	Op   string
	Err  error
}

func New(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
		if errors.Is(e.Err, context.DeadlineExceeded) && e.Kind != ErrTimeout {
			errs = append(errs, ErrTimeout)
		}
	}
	return errs
}

// KindOf returns the first known kind matched by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{
		ErrNavigation, ErrSubmission, ErrChallengeSolve, ErrFieldFill,
		ErrMappingParse, ErrMappingSchema, ErrOracle, ErrElementNotFound, ErrTimeout,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
