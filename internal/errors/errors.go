package errors

import "fmt"

// ErrorCode represents a TabFlow error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrUserExists     ErrorCode = "USER_EXISTS"     // 400
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"    // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrSyncTransport  ErrorCode = "SYNC_TRANSPORT"  // 502
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TabFlowError represents a structured error with code, status, and details.
type TabFlowError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TabFlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid input.
func NewInvalidRequest(msg string) *TabFlowError {
	return &TabFlowError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUserExists creates a 400 error for signup with an already-registered email.
func NewUserExists(email string) *TabFlowError {
	return &TabFlowError{
		Code:    ErrUserExists,
		Status:  400,
		Message: "user already exists",
		Details: map[string]any{"email": email},
	}
}

// NewUnauthorized creates a 401 error for missing or invalid credentials.
func NewUnauthorized() *TabFlowError {
	return &TabFlowError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "Unauthorized",
	}
}

// NewNotFound creates a 404 error for an unknown intent id.
func NewNotFound(id string) *TabFlowError {
	return &TabFlowError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("intent not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewSyncTransport creates a 502 error for a failed push to the backend.
// Local mutations already committed are never rolled back because of one of
// these; the caller decides whether to retry.
func NewSyncTransport(err error) *TabFlowError {
	msg := "sync transport failure"
	if err != nil {
		msg = fmt.Sprintf("sync transport failure: %v", err)
	}
	return &TabFlowError{
		Code:    ErrSyncTransport,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TabFlowError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TabFlowError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TabFlowError with the given code.
func Is(err error, code ErrorCode) bool {
	if tfErr, ok := err.(*TabFlowError); ok {
		return tfErr.Code == code
	}
	return false
}
