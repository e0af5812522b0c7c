// Package apperr defines the error kinds the API distinguishes between.
//
// Every kind is a sentinel error. Services attach a client-facing message
// with New or Wrap, and callers test the kind with errors.Is. Anything that
// does not unwrap to one of the sentinels is a fault.
package apperr

import "errors"

var (
	// ErrConflict means a unique key is already taken.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means a required record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest means the payload or a referenced record is invalid.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated means the bearer token is missing, invalid,
	// expired, revoked, or no longer resolves to an account.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials means the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden means the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidToken is returned by the token verifier.
	ErrInvalidToken = errors.New("invalid token")
)

// Error carries a kind and the message shown to the client.
type Error struct {
	Kind    error
	Message string
	cause   error
}

// New returns an error of the given kind with a client-facing message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap is like New but keeps cause in the chain for logs.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// IsFault reports whether err is not one of the known kinds.
func IsFault(err error) bool {
	for _, kind := range []error{
		ErrConflict, ErrNotFound, ErrBadRequest, ErrUnauthenticated,
		ErrInvalidCredentials, ErrForbidden, ErrInvalidToken,
	} {
		if errors.Is(err, kind) {
			return false
		}
	}
	return true
}
