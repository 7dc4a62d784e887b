// Package apierr defines the error taxonomy shared by the Yggdrasil and
// Mojang API clients.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every *Error produced by this module matches exactly one of
// them with errors.Is.
var (
	// ErrBadRequest is returned when the server rejects a request because of
	// malformed parameters or syntax.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidCredentials is returned when the username or password used
	// for a login is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserMigrated is returned when a migrated account logs in with its
	// player name instead of its email address.
	ErrUserMigrated = errors.New("user migrated")

	// ErrInvalidAccessToken is returned when an access token was
	// invalidated, must be refreshed, or is malformed.
	ErrInvalidAccessToken = errors.New("invalid access token")

	// ErrAuthenticationRefused is returned when the server temporarily
	// locks out login attempts. The credentials may still be valid.
	ErrAuthenticationRefused = errors.New("authentication refused")

	// ErrUnauthorized is returned when an operation lacks a valid session
	// or a secured IP.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the server answers 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrIPNotSecured is returned when the current IP has not been secured
	// by answering the security challenges.
	ErrIPNotSecured = errors.New("ip not secured")

	// ErrInvalidArgument is returned by local validation before any request
	// is sent, and for server-side validation failures such as wrong
	// security answers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedResponse is returned when a response body does not match
	// the expected shape. It indicates protocol drift and is never retried.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnexpectedServer is the catch-all for responses no other kind
	// describes.
	ErrUnexpectedServer = errors.New("unexpected server error")
)

// ErrForbidden matches any error classified from a 403 response,
// regardless of its kind. A 403 whose body could not be parsed is only
// ErrMalformedResponse.
var ErrForbidden = errors.New("forbidden")

var kindsByName = map[string]error{
	"bad_request":            ErrBadRequest,
	"invalid_credentials":    ErrInvalidCredentials,
	"user_migrated":          ErrUserMigrated,
	"invalid_access_token":   ErrInvalidAccessToken,
	"authentication_refused": ErrAuthenticationRefused,
	"unauthorized":           ErrUnauthorized,
	"rate_limited":           ErrRateLimited,
	"ip_not_secured":         ErrIPNotSecured,
	"invalid_argument":       ErrInvalidArgument,
	"malformed_response":     ErrMalformedResponse,
	"unexpected_server":      ErrUnexpectedServer,
}

// KindByName resolves the snake_case name of an error kind, as used in
// configuration files.
func KindByName(name string) (error, bool) {
	kind, ok := kindsByName[name]
	return kind, ok
}

// KindName is the inverse of KindByName. It returns "" for errors that are
// not one of the kinds of this package.
func KindName(kind error) string {
	for name, k := range kindsByName {
		if k == kind {
			return name
		}
	}
	return ""
}

// Error is a classified API failure.
type Error struct {
	// Kind is one of the sentinel errors of this package.
	Kind error

	// StatusCode is the HTTP status of the response, or 0 for errors
	// raised before a request was sent.
	StatusCode int

	// Type is the machine-readable "error" field of the server body.
	Type string

	// Description is the server's human-readable message, verbatim.
	Description string

	// Cause is the optional secondary "cause" field of the server body.
	Cause string

	// Body holds the raw response text for unexpected responses.
	Body string

	// Err is an underlying error, such as a JSON decode failure.
	Err error
}

// Error returns the error message.
func (e *Error) Error() string {
	kind := "api error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}

	switch {
	case e.Kind == ErrUnexpectedServer && e.Description == "":
		return fmt.Sprintf("%s (status %d): %s", kind, e.StatusCode, e.Body)
	case e.Kind == ErrUnexpectedServer:
		msg := fmt.Sprintf("%s (status %d): %s: %s", kind, e.StatusCode, e.Type, e.Description)
		if e.Cause != "" {
			msg += " (cause: " + e.Cause + ")"
		}
		return msg
	case e.Description != "":
		return fmt.Sprintf("%s: %s", kind, e.Description)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", kind, e.Err)
	default:
		return kind
	}
}

// Is reports whether target is the kind of e, or ErrForbidden for errors
// classified from a 403 response.
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return target == ErrForbidden &&
		e.StatusCode == http.StatusForbidden &&
		e.Kind != ErrMalformedResponse
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request later may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == ErrRateLimited
}

// New creates an Error of the given kind from a parsed server error body.
func New(kind error, statusCode int, body ServerErrorBody) *Error {
	return &Error{
		Kind:        kind,
		StatusCode:  statusCode,
		Type:        body.Error,
		Description: body.Description,
		Cause:       body.Cause,
	}
}

// Unexpected creates an ErrUnexpectedServer error carrying the raw body.
func Unexpected(statusCode int, rawBody string) *Error {
	return &Error{
		Kind:       ErrUnexpectedServer,
		StatusCode: statusCode,
		Body:       rawBody,
	}
}

// Malformed creates an ErrMalformedResponse error wrapping a decode failure.
func Malformed(statusCode int, err error) *Error {
	return &Error{
		Kind:       ErrMalformedResponse,
		StatusCode: statusCode,
		Err:        err,
	}
}

// InvalidArgument creates a local validation error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{
		Kind:        ErrInvalidArgument,
		Description: fmt.Sprintf(format, args...),
	}
}

// Reclassify returns a copy of err with a different kind. Non-API errors
// are returned unchanged.
func Reclassify(err error, kind error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	clone := *apiErr
	clone.Kind = kind
	return &clone
}

// IsRetryable reports whether err is a classified error that callers may
// retry. The clients in this module never retry on their own.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsClassified reports whether err is an *Error produced from a server
// response, as opposed to a transport failure, a malformed body, or local
// validation.
func IsClassified(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode != 0 && apiErr.Kind != ErrMalformedResponse
}
