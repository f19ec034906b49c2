package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors.
// Kind is one of the sentinels below; Cause is the underlying failure, if any.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Common application errors
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrValidation              = errors.New("validation failed")
	ErrUnsupportedDocumentKind = errors.New("unsupported document kind")
	ErrUnsupportedFormat       = errors.New("unsupported format")
	ErrSourceUnavailable       = errors.New("source unavailable")
	ErrExtractionFailure       = errors.New("extraction failure")
)

// Error codes carried by AppError.Code.
const (
	CodeConfig             = "CONFIG_ERROR"
	CodeUnsupportedDocType = "UNSUPPORTED_DOCUMENT_KIND"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	CodeExtractionFailure  = "EXTRACTION_FAILURE"
)

// Error constructors
func NewAppError(code, message string, kind error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

func UnsupportedDocumentKind(kind string) error {
	return NewAppError(CodeUnsupportedDocType, fmt.Sprintf("document kind %q is not supported", kind), ErrUnsupportedDocumentKind)
}

func UnsupportedFormat(message string) error {
	return NewAppError(CodeUnsupportedFormat, message, ErrUnsupportedFormat)
}

func SourceUnavailable(message string, cause error) error {
	e := NewAppError(CodeSourceUnavailable, message, ErrSourceUnavailable)
	e.Cause = cause
	return e
}

func ExtractionFailure(message string, cause error) error {
	e := NewAppError(CodeExtractionFailure, message, ErrExtractionFailure)
	e.Cause = cause
	return e
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
