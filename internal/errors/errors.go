package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrBadRequest is returned for malformed or missing input.
	ErrBadRequest = errors.New("invalid request")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// It deliberately does not say which one.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidEmail is returned when an email address is not well formed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrMissingToken is returned when a protected route has no bearer token.
	ErrMissingToken = errors.New("missing access token")
	// ErrInvalidSession is returned when the access token is malformed or forged.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired is returned when the access token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrForbidden is returned when an authenticated caller lacks the privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrNoRefreshToken is returned when the refresh cookie is absent.
	ErrNoRefreshToken = errors.New("no refresh token found")
	// ErrExpiredRefreshToken is returned when the refresh token is past its expiry.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	// ErrInvalidRefreshToken is returned when the refresh token does not verify.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectOrUserNotFound is returned when a membership row cannot be resolved.
	ErrProjectOrUserNotFound = errors.New("project or user not found")
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	msg    string
	code   string
}{
	{ErrBadRequest, http.StatusBadRequest, "Invalid request", "BAD_REQUEST"},
	{ErrPasswordMismatch, http.StatusBadRequest, "Passwords do not match", "PASSWORD_MISMATCH"},
	{ErrInvalidEmail, http.StatusBadRequest, "Invalid email format", "INVALID_EMAIL"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS"},
	{ErrMissingToken, http.StatusUnauthorized, "Authentication required. Please log in.", "MISSING_TOKEN"},
	{ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please refresh your session.", "SESSION_EXPIRED"},
	{ErrInvalidSession, http.StatusUnauthorized, "Invalid session. Please log in again.", "INVALID_SESSION"},
	{ErrForbidden, http.StatusForbidden, "You are not authorized to perform this action.", "FORBIDDEN"},
	{ErrNoRefreshToken, http.StatusUnauthorized, "Authentication required. Please log in.", "NO_REFRESH_TOKEN"},
	{ErrExpiredRefreshToken, http.StatusUnauthorized, "Session expired. Please log in again.", "REFRESH_TOKEN_EXPIRED"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid session. Please log in again.", "INVALID_REFRESH_TOKEN"},
	{ErrUserNotFound, http.StatusNotFound, "User not found.", "USER_NOT_FOUND"},
	{ErrProjectNotFound, http.StatusNotFound, "Project not found.", "PROJECT_NOT_FOUND"},
	{ErrProjectOrUserNotFound, http.StatusNotFound, "Project or user not found.", "PROJECT_OR_USER_NOT_FOUND"},
	{ErrUserAlreadyExists, http.StatusConflict, "User already exists.", "USER_ALREADY_EXISTS"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched with errors.Is;
// anything unknown becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.msg, m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Respond converts err into an echo error carrying an ErrorResponse body.
// The original error is kept as the internal cause for server-side logging only.
func Respond(err error) *echo.HTTPError {
	httpErr := MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}
