// Package errs defines the error taxonomy shared by the refactoring engines.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotInitialized     = errors.New("project index not initialized")
	ErrConfiguration      = errors.New("project configuration not found")
	ErrPattern            = errors.New("invalid search pattern")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidTargetPath  = errors.New("invalid target path")
	ErrStaleEntity        = errors.New("entity handle is stale")
	ErrNameCollision      = errors.New("name already in use")
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedFeature = errors.New("unsupported declaration form")
)

// Error carries the operation and subject that failed alongside its kind.
type Error struct {
	Kind    error
	Op      string
	Subject string
	Err     error
}

// New builds an *Error. err may be nil.
func New(kind error, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
