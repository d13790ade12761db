// Package apperr defines the failure kinds of the generate-and-deliver
// pipeline. Every error that reaches a flow boundary carries a Kind and,
// when one is known, a message fit to show the user.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	RenderTargetNotFound     Kind = "RENDER_TARGET_NOT_FOUND"
	RenderBackendUnavailable Kind = "RENDER_BACKEND_UNAVAILABLE"
	RenderFailed             Kind = "RENDER_FAILED"
	PublishRejected          Kind = "PUBLISH_REJECTED"
	PublishTransport         Kind = "PUBLISH_TRANSPORT"
	ShareDeclined            Kind = "SHARE_DECLINED"
	Busy                     Kind = "BUSY"
	Internal                 Kind = "INTERNAL"
)

// Error is a classified failure. Message is user-facing and may be empty.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same Kind, so errors.Is(err, apperr.E(k))
// works across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New creates an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// E returns a bare Error usable as an errors.Is target.
func E(kind Kind) *Error { return &Error{Kind: kind} }

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is nil or unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOr returns the message carried by err, falling back to the
// provided text when the failure has none.
func MessageOr(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
