package domain

import (
	"errors"
	"fmt"
)

// Error kinds. The HTTP layer maps each kind to a status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("duplicate field value entered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("not authorized to access this route")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrUpstream           = errors.New("upstream dependency failed")
)

// Error pairs an error kind with the message shown to the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind with a formatted client message.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for the "no <resource> with that id" error every
// lookup by id returns.
func NotFound(resource, id string) error {
	return Errorf(ErrNotFound, "No %s with the id of %s", resource, id)
}
