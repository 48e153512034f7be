// Package error defines the structured error kinds this module raises:
// DbError, TransactionAborted, NotFound, and Unsupported.
package error

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error for the propagation policy described in the
// component design: the lock manager surfaces only Aborted, the buffer
// pool translates lower I/O failures into DbError (except on the commit
// path, where log failures propagate as-is).
type Kind int

const (
	// DbError covers corrupt pages, bad schema, and a cache exhausted with
	// only dirty pages left to evict.
	DbError Kind = iota
	// Aborted is TransactionAborted: the sole user-visible lock-layer error.
	Aborted
	// IoError wraps an underlying file failure.
	IoError
	// NotFound covers a missing slot, field, or table.
	NotFound
	// Unsupported covers e.g. constructing a StringAggregator with an op
	// other than COUNT.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case DbError:
		return "DbError"
	case Aborted:
		return "TransactionAborted"
	case IoError:
		return "IoError"
	case NotFound:
		return "NotFound"
	case Unsupported:
		return "Unsupported"
	default:
		return "UnknownError"
	}
}

// Error is a structured error carrying a Kind, the component and operation
// that raised it, and the wrapped cause (if any).
type Error struct {
	Kind      Kind
	Operation string
	Component string
	Cause     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s]", e.Kind)
	if e.Component != "" {
		msg += fmt.Sprintf(" %s", e.Component)
	}
	if e.Operation != "" {
		msg += fmt.Sprintf(".%s", e.Operation)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a bare error of the given kind with no wrapped cause.
func New(kind Kind, component, operation, message string) *Error {
	return &Error{Kind: kind, Component: component, Operation: operation, Cause: errors.New(message)}
}

// Wrap attaches component/operation context to an existing error, tagging
// it with kind. If err is already an *Error, its kind is preserved and only
// missing context fields are filled in, enriching in place rather than
// double-wrapping.
func Wrap(err error, kind Kind, component, operation string) *Error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		if existing.Component == "" {
			existing.Component = component
		}
		if existing.Operation == "" {
			existing.Operation = operation
		}
		return existing
	}
	return &Error{
		Kind:      kind,
		Component: component,
		Operation: operation,
		Cause:     errors.WithStack(err),
	}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
