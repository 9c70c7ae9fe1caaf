// Package acl decides whether a user may perform an operation on a virtual
// path. Decisions are never cached; every call goes to the Policy.
package acl

import (
	"strings"

	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

// Policy answers a single permission question. A nil return allows the
// operation; a denial should be an *Error.
type Policy interface {
	Evaluate(kind OperationKind, user *ftpmodel.User, path string) error
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(kind OperationKind, user *ftpmodel.User, path string) error

func (f PolicyFunc) Evaluate(kind OperationKind, user *ftpmodel.User, path string) error {
	return f(kind, user, path)
}

// AllowAll permits everything. Used by tooling that runs with site owner
// rights.
var AllowAll = PolicyFunc(func(OperationKind, *ftpmodel.User, string) error { return nil })

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) FileAllowed(kind OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error {
	return e.evaluate(kind, user, path.String())
}

// DirAllowed checks path as a directory. Rules see it with a trailing slash
// so patterns such as "/incoming/*" cover the directory itself.
func (e *Engine) DirAllowed(kind OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error {
	p := path.String()
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return e.evaluate(kind, user, p)
}

func (e *Engine) evaluate(kind OperationKind, user *ftpmodel.User, path string) error {
	if !kind.Valid() {
		return Denied(kind, path)
	}

	return e.policy.Evaluate(kind, user, path)
}
