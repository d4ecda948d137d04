package apperrors

import "errors"

// Resource errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrMissingToken       = errors.New("authorization header is required")
)

// Authorization errors
var (
	ErrPermissionDenied = errors.New("permission denied")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound       error = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
	ErrEmailAlreadyExists error = errors.New("email already registered")
)

// Catalog errors. Each wraps a generic sentinel so handlers map them by category.
var (
	ErrProgramNotFound      error = &CustomError{Err: ErrResourceNotFound, Message: "program not found"}
	ErrProgramAlreadyExists error = &CustomError{Err: ErrResourceAlreadyExists, Message: "program with this name already exists"}
	ErrCourseNotFound       error = &CustomError{Err: ErrResourceNotFound, Message: "course not found"}
	ErrCourseAlreadyExists  error = &CustomError{Err: ErrResourceAlreadyExists, Message: "course with this code already exists in the program"}
	ErrPrerequisiteNotFound error = &CustomError{Err: ErrResourceNotFound, Message: "prerequisite not found"}
	ErrPrerequisiteExists   error = &CustomError{Err: ErrResourceAlreadyExists, Message: "prerequisite already exists"}
	ErrSelfPrerequisite     error = &CustomError{Err: ErrValidationFailed, Message: "a course cannot be its own prerequisite"}
	ErrGroupNotFound        error = &CustomError{Err: ErrResourceNotFound, Message: "prerequisite group not found"}
	ErrInvalidGroupKind     error = &CustomError{Err: ErrValidationFailed, Message: "group kind must be AND or OR"}
	ErrProgressNotFound     error = &CustomError{Err: ErrResourceNotFound, Message: "progress record not found"}
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is reports whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
