package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline failure so shells can render it without
// inspecting messages.
type Kind string

const (
	KindUnknown   Kind = ""
	KindCapture   Kind = "capture"
	KindDecode    Kind = "decode"
	KindInference Kind = "inference"
	KindIO        Kind = "io"
	KindConfig    Kind = "config"
	KindBusy      Kind = "busy"
)

// Common error types
var (
	// Pipeline failures
	ErrCapture   = NewKind(KindCapture, "audio capture failed")
	ErrDecode    = NewKind(KindDecode, "audio could not be decoded")
	ErrInference = NewKind(KindInference, "transcription failed")
	ErrIO        = NewKind(KindIO, "file operation failed")

	// Configuration errors
	ErrMissingConfig = NewKind(KindConfig, "configuration is required")
	ErrInvalidConfig = NewKind(KindConfig, "invalid configuration")

	// Pipeline state
	ErrBusy         = NewKind(KindBusy, "another action is in progress")
	ErrNoTranscript = NewKind(KindIO, "no transcript available")
	ErrEmptyAudio   = NewKind(KindDecode, "audio file is empty")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// NewKind creates a new error of the given kind
func NewKind(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error of the given kind
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a kind and additional context
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with a kind and formatted context
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Message returns the message without the cause chain.
func (e *Error) Message() string {
	return e.message
}

// Kind returns the failure kind
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinels by message, and kind-only sentinels (ErrCapture,
// ErrDecode, ErrInference, ErrIO) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.message == t.message && (t.kind == KindUnknown || e.kind == t.kind) {
		return true
	}
	return isKindSentinel(t) && e.kind == t.kind
}

func isKindSentinel(e *Error) bool {
	return e == ErrCapture || e == ErrDecode || e == ErrInference || e == ErrIO
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Is and As are re-exported so callers need only this package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Helper functions for common patterns

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(kind Kind, field string, min, max interface{}) error {
	return Newf(kind, "%s out of range (must be between %v and %v)", field, min, max)
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf(KindConfig, "%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf(KindConfig, "%s is invalid: %s", field, reason)
}

// Timeout returns a timeout error
func Timeout(kind Kind, operation string, duration string) error {
	return Newf(kind, "%s timeout after %s", operation, duration)
}
