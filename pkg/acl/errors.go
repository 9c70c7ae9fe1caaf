package acl

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// Error is returned when a policy refuses an operation. Errno is the code the
// policy wants surfaced to the client, normally EACCES.
type Error struct {
	Kind  OperationKind
	Path  string
	Errno syscall.Errno
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Path, e.Errno.Error())
}

func (e *Error) Unwrap() error {
	return e.Errno
}

func Denied(kind OperationKind, path string) *Error {
	return &Error{Kind: kind, Path: path, Errno: syscall.EACCES}
}

// IsDenied reports whether err carries a policy refusal.
func IsDenied(err error) bool {
	var aclErr *Error
	return errors.As(err, &aclErr)
}
