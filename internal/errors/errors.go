package errors

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUserExists is returned when registering an already-used email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches a login email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTodoNotFound is returned for missing todos and, deliberately, for
	// todos owned by someone else so existence never leaks.
	ErrTodoNotFound = errors.New("todo not found")
	// ErrUnauthenticated is returned when a request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError carries every violation found in a request, not just
// the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, ", ")
}

// NewValidationError creates a validation error from individual messages.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// RateLimitError is returned when login attempts exceed the throttle.
type RateLimitError struct {
	RetryAfterMinutes int
}

func (e *RateLimitError) Error() string {
	return "rate limited, retry after " + strconv.Itoa(e.RetryAfterMinutes) + "m"
}

// BulkOwnershipError is returned when a bulk operation references todos
// that do not belong to the requester. The whole batch is rejected.
type BulkOwnershipError struct {
	UnauthorizedIDs []uuid.UUID
}

func (e *BulkOwnershipError) Error() string {
	return "bulk operation includes todos owned by another user"
}

// MessageResponse is the baseline JSON error body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationResponse enumerates all input violations.
type ValidationResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// RateLimitResponse reports how long (in minutes) the caller should wait.
type RateLimitResponse struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// BulkForbiddenResponse lists the ids that failed the ownership check.
type BulkForbiddenResponse struct {
	Message         string      `json:"message"`
	UnauthorizedIDs []uuid.UUID `json:"unauthorizedIds"`
}

// MapErrorToHTTP maps domain errors to a status code and response body.
// Anything unrecognized becomes an opaque 500; internal detail stays in logs.
func MapErrorToHTTP(err error) (int, interface{}) {
	var (
		validationErr *ValidationError
		rateErr       *RateLimitError
		bulkErr       *BulkOwnershipError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ValidationResponse{
			Message: "Validation failed",
			Errors:  validationErr.Violations,
		}
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, RateLimitResponse{
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: rateErr.RetryAfterMinutes,
		}
	case errors.As(err, &bulkErr):
		return http.StatusForbidden, BulkForbiddenResponse{
			Message:         "Access denied: Some todos don't belong to you",
			UnauthorizedIDs: bulkErr.UnauthorizedIDs,
		}
	case errors.Is(err, ErrUserExists):
		return http.StatusBadRequest, MessageResponse{Message: "User already exists"}
	case errors.Is(err, ErrUserNotFound):
		return http.StatusBadRequest, MessageResponse{Message: "User not found"}
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, MessageResponse{Message: "Invalid credentials"}
	case errors.Is(err, ErrTodoNotFound):
		return http.StatusNotFound, MessageResponse{Message: "Todo not found"}
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, MessageResponse{Message: "Invalid or expired token. Please log in again."}
	default:
		return http.StatusInternalServerError, MessageResponse{Message: "Internal server error"}
	}
}
