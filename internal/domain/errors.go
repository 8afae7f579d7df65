package domain

import (
	"errors"
	"net/http"
)

// Code classifies a business error. The zero value is not a valid code.
type Code int

const (
	CodeNotFound Code = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeUnavailable
)

// String returns the snake_case name used in logs.
func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not_found"
	case CodeAlreadyExists:
		return "already_exists"
	case CodeValidation:
		return "validation"
	case CodeInternal:
		return "internal"
	case CodeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a classified error. Message is safe to show to API clients;
// Err carries the underlying cause and is never serialized.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError with the same code, so
// errors.Is(err, ErrNotFound) holds for every not-found error in the chain.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is. Each one stands for its whole category.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnavailable   = &AppError{Code: CodeUnavailable, Message: "store unavailable"}
)

// NewAppError creates an AppError wrapping err, which may be nil.
func NewAppError(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsInternal(err error) bool      { return errors.Is(err, ErrInternal) }
func IsUnavailable(err error) bool   { return errors.Is(err, ErrUnavailable) }

// CodeOf returns the code of the first *AppError in err's chain.
// Unclassified non-nil errors count as CodeInternal; nil yields 0.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatusCode maps an error to an HTTP status code. Anything that is not
// an *AppError answers 500.
func HTTPStatusCode(err error) int {
	return CodeOf(err).HTTPStatus()
}
