package errors

import (
	"fmt"
	"net/http"

	apperrors "speech-whisper/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	// Pipeline failures, named after apperrors.Kind
	KindCapture   ErrorKind = "capture"
	KindDecode    ErrorKind = "decode"
	KindInference ErrorKind = "inference"
	KindIO        ErrorKind = "io"
	KindBusy      ErrorKind = "busy"

	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindPayloadTooLarge    ErrorKind = "payload_too_large"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindCapture, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindDecode, KindValidation:
		return http.StatusUnprocessableEntity
	case KindInference:
		return http.StatusBadGateway
	case KindBusy:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts a pipeline error into an APIError. Errors that are
// already APIErrors pass through.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	var appErr *apperrors.Error
	if !apperrors.As(err, &appErr) {
		return &APIError{Kind: KindInternal, Message: "Internal server error"}
	}

	switch appErr.Kind() {
	case apperrors.KindCapture:
		return &APIError{Kind: KindCapture, Message: err.Error(), Code: "capture_failed"}
	case apperrors.KindDecode:
		return &APIError{Kind: KindDecode, Message: err.Error(), Code: "undecodable_audio"}
	case apperrors.KindInference:
		return &APIError{Kind: KindInference, Message: err.Error(), Code: "transcription_failed"}
	case apperrors.KindBusy:
		return &APIError{Kind: KindBusy, Message: appErr.Message(), Code: "busy"}
	case apperrors.KindIO:
		if apperrors.Is(err, apperrors.ErrNoTranscript) {
			return &APIError{Kind: KindNotFound, Message: appErr.Message(), Code: "no_transcript"}
		}
		return &APIError{Kind: KindIO, Message: err.Error(), Code: "io_failed"}
	case apperrors.KindConfig:
		return &APIError{Kind: KindServiceUnavailable, Message: err.Error(), Code: "misconfigured"}
	default:
		return &APIError{Kind: KindInternal, Message: err.Error()}
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewPayloadTooLargeError reports an upload over the configured limit
func NewPayloadTooLargeError(limitMB int) *APIError {
	return &APIError{
		Kind:    KindPayloadTooLarge,
		Message: fmt.Sprintf("upload exceeds %d MB", limitMB),
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Message: message,
	}
}
