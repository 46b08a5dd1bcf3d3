package oerror

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can decide how to react to it without matching on messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindMissingBody is returned when an agent has no resolvable rigid body in the collision world.
	KindMissingBody
	// KindUnknownArchetype is returned when an agent references an archetype that is not in the parameter table.
	KindUnknownArchetype
	// KindInvalidParams is returned when a parameter block or archetype table fails validation.
	KindInvalidParams
	// KindConflict is returned when two tasks of a batch declare conflicting access to the same resource.
	KindConflict
	// KindPanic wraps a panic recovered from a worker task.
	KindPanic
	// KindTrace is returned by the trace recorder, reader and verifier.
	KindTrace
)

func (k Kind) String() string {
	switch k {
	case KindMissingBody:
		return "missing_body"
	case KindUnknownArchetype:
		return "unknown_archetype"
	case KindInvalidParams:
		return "invalid_params"
	case KindConflict:
		return "conflict"
	case KindPanic:
		return "panic"
	case KindTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every package of the engine.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns an error of KindUnknown with a formatted message.
func New(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Newk returns an error of the given kind with a formatted message.
func Newk(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
