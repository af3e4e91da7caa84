// Package errors provides the error taxonomy shared by the queue API and the bot,
// plus the anti-crash handler used to recover goroutines.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error so callers can decide how to surface it.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindNotFound
	KindUpstreamUnavailable
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	default:
		return "Internal"
	}
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInternal            = &Error{Kind: KindInternal}
)

// Unauthorized builds an Unauthorized error
func Unauthorized(op string) error {
	return &Error{Kind: KindUnauthorized, Op: op}
}

// Validation builds a ValidationError with a caller-facing message
func Validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError
func NotFound(op, format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure talking to an external API
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Err: err}
}

// Internal wraps an unexpected fault
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err has the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Message returns the caller-facing message of err: the Msg of a classified
// error, or its kind name when there is none.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Kind.String()
	}
	return KindInternal.String()
}
