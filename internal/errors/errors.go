package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound            ErrCode = "NOT_FOUND"
	ErrCodeAlreadyLinked       ErrCode = "ALREADY_LINKED"
	ErrCodeInvalidTitle        ErrCode = "INVALID_TITLE"
	ErrCodeUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeStoreUnavailable    ErrCode = "STORE_UNAVAILABLE"
	ErrCodeBadRequest          ErrCode = "BAD_REQUEST"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewAlreadyLinkedError creates an error for a repository that already
// has a project
func NewAlreadyLinkedError(repositoryID int64) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyLinked,
		Message: fmt.Sprintf("repository %d already has a linked project", repositoryID),
	}
}

// NewInvalidTitleError creates an error for a title collision
func NewInvalidTitleError(title string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTitle,
		Message: fmt.Sprintf("a project titled %q already exists", title),
	}
}

// NewUpstreamUnavailableError creates an error for an unreachable
// external source
func NewUpstreamUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewStoreUnavailableError creates an error for a persistence failure
func NewStoreUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsAlreadyLinked checks if the error is an already linked error
func IsAlreadyLinked(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeAlreadyLinked
	}
	return false
}

// IsInvalidTitle checks if the error is an invalid title error
func IsInvalidTitle(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeInvalidTitle
	}
	return false
}

// IsUpstreamUnavailable checks if the error is an upstream unavailable error
func IsUpstreamUnavailable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeUpstreamUnavailable
	}
	return false
}
