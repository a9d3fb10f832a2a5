package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserExists is returned when signing up with an already registered email.
	ErrUserExists = errors.New("User already exists")
	// ErrUserNotFound is returned when no account matches the given email.
	ErrUserNotFound = errors.New("User does not exist")
	// ErrWrongPassword is returned when password comparison fails.
	ErrWrongPassword = errors.New("Password is incorrect")
	// ErrAlreadyVerified is returned when requesting a code for a verified account.
	ErrAlreadyVerified = errors.New("User is already verified")
	// ErrNotVerified is returned when an operation requires a verified account.
	ErrNotVerified = errors.New("User is not verified")
	// ErrNoPendingCode is returned when no one-time code is awaiting confirmation.
	ErrNoPendingCode = errors.New("No code was requested")
	// ErrCodeExpired is returned when a pending code is past its expiry.
	ErrCodeExpired = errors.New("Code has expired")
	// ErrCodeMismatch is returned when a submitted code fails the signed comparison.
	ErrCodeMismatch = errors.New("Code is incorrect")
	// ErrCodeConsumed is returned when a concurrent request consumed the code first.
	ErrCodeConsumed = errors.New("Code has already been used")
	// ErrMailNotSent is returned when the outbound email was not confirmed sent.
	ErrMailNotSent = errors.New("Verification code not sent")
	// ErrPostNotFound is returned when no post matches the requested id.
	ErrPostNotFound = errors.New("Post not found")
	// ErrPostForbidden is returned when the requester does not own the post.
	ErrPostForbidden = errors.New("You cannot modify this post")
	// ErrInvalidPostID is returned for a structurally invalid post id.
	ErrInvalidPostID = errors.New("Invalid post id")
)

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HTTPError pairs a domain failure with the status code it is served under.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500 so internal detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrWrongPassword):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotVerified), errors.Is(err, ErrPostForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrNoPendingCode),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrCodeMismatch),
		errors.Is(err, ErrCodeConsumed),
		errors.Is(err, ErrInvalidPostID):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMailNotSent):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
