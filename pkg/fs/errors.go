package fs

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"github.com/tkjenll/ebftpd/pkg/acl"
)

type ErrorKind int

const (
	// KindPolicyDenied means a permission check refused the operation
	// before the filesystem was touched.
	KindPolicyDenied ErrorKind = iota + 1

	// KindOS carries the errno of a failed system call.
	KindOS

	// KindExhausted means unique name allocation ran out of attempts.
	KindExhausted

	// KindLogic is a caller error such as an empty path.
	KindLogic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPolicyDenied:
		return "policy denied"
	case KindOS:
		return "os error"
	case KindExhausted:
		return "exhausted"
	case KindLogic:
		return "logic error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by every FileService operation. Errno is zero for
// KindExhausted and KindLogic.
type Error struct {
	Kind  ErrorKind
	Op    string
	Path  string
	Errno syscall.Errno
}

func (e *Error) Error() string {
	if e.Errno == 0 {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Path, e.Kind, e.Errno.Error())
}

// Unwrap exposes the errno so errors.Is(err, os.ErrNotExist) and friends
// work on an *Error.
func (e *Error) Unwrap() error {
	if e.Errno == 0 {
		return nil
	}
	return e.Errno
}

func policyError(op, path string, err error) *Error {
	errno := syscall.EACCES
	var aclErr *acl.Error
	if errors.As(err, &aclErr) && aclErr.Errno != 0 {
		errno = aclErr.Errno
	}

	return &Error{Kind: KindPolicyDenied, Op: op, Path: path, Errno: errno}
}

func osError(op, path string, err error) *Error {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr
	}

	errno := syscall.EIO
	var e syscall.Errno
	if errors.As(err, &e) {
		errno = e
	}

	return &Error{Kind: KindOS, Op: op, Path: path, Errno: errno}
}

func KindOf(err error) ErrorKind {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Kind
	}
	return 0
}

func IsPolicyDenied(err error) bool {
	return KindOf(err) == KindPolicyDenied
}

func IsExhausted(err error) bool {
	return KindOf(err) == KindExhausted
}

// ErrnoOf returns the errno carried by err, or 0 when there is none.
func ErrnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}
