package fs

import (
	"os"
	"syscall"
	"time"

	"github.com/tkjenll/ebftpd/pkg/acl"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"golang.org/x/sys/unix"
)

// Checker is the permission boundary the file layer calls through.
// *acl.Engine satisfies it.
type Checker interface {
	FileAllowed(kind acl.OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error
	DirAllowed(kind acl.OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error
}

// Status is the lazily resolved metadata of one path. A Status bound to a
// user checks View permission on first resolution; a bare Status does not.
// The outcome of the first Resolve, success or failure, is kept until the
// Status is reset. Not safe for concurrent use.
type Status struct {
	path    fspath.RealPath
	vpath   fspath.VirtualPath
	user    *ftpmodel.User
	checker Checker

	resolved    bool
	err         error
	info        os.FileInfo
	linkDir     bool
	linkRegular bool
}

func NewStatus(path fspath.RealPath) *Status {
	return &Status{path: path}
}

func NewUserStatus(resolver *fspath.Resolver, checker Checker, user *ftpmodel.User, vpath fspath.VirtualPath) *Status {
	s := &Status{}
	s.ResetUser(resolver, checker, user, vpath)
	return s
}

// Reset forgets the memoized outcome so the next accessor stats again.
func (s *Status) Reset() {
	s.resolved = false
	s.err = nil
	s.info = nil
	s.linkDir = false
	s.linkRegular = false
}

// ResetPath retargets s at a bare real path. Any bound user is dropped.
func (s *Status) ResetPath(path fspath.RealPath) {
	s.Reset()
	s.user = nil
	s.vpath = ""
	s.path = path
}

// ResetUser retargets s at vpath on behalf of user. Any Status can be
// retargeted this way, including one made by NewStatus.
func (s *Status) ResetUser(resolver *fspath.Resolver, checker Checker, user *ftpmodel.User, vpath fspath.VirtualPath) {
	s.Reset()
	s.checker = checker
	s.user = user
	s.vpath = vpath
	s.path = ""
	if resolver != nil {
		s.path = resolver.MakeReal(vpath)
	}
}

func (s *Status) Path() fspath.RealPath {
	return s.path
}

// Resolve stats the path on first call and returns the same result on every
// later call.
func (s *Status) Resolve() error {
	if !s.resolved {
		s.err = s.resolve()
		s.resolved = true
	}

	return s.err
}

func (s *Status) resolve() error {
	if s.path.IsEmpty() {
		return &Error{Kind: KindLogic, Op: "stat"}
	}

	if s.user != nil && s.checker == nil {
		return &Error{Kind: KindLogic, Op: "stat", Path: s.vpath.String()}
	}

	if s.user != nil {
		if err := s.checker.FileAllowed(acl.View, s.user, s.vpath); err != nil {
			return policyError("stat", s.vpath.String(), err)
		}
	}

	info, err := os.Lstat(s.path.String())
	if err != nil {
		return osError("stat", s.path.String(), err)
	}
	s.info = info

	if s.user != nil && info.IsDir() {
		if err := s.checker.DirAllowed(acl.View, s.user, s.vpath); err != nil {
			s.info = nil
			return policyError("stat", s.vpath.String(), err)
		}
	}

	if info.Mode()&os.ModeSymlink != 0 {
		// A dangling link is left unclassified.
		if target, err := os.Stat(s.path.String()); err == nil {
			s.linkDir = target.IsDir()
			s.linkRegular = target.Mode().IsRegular()
		}
	}

	return nil
}

func (s *Status) ok() bool {
	return s.Resolve() == nil
}

func (s *Status) IsRegularFile() bool {
	return s.ok() && (s.info.Mode().IsRegular() || s.linkRegular)
}

func (s *Status) IsDirectory() bool {
	return s.ok() && (s.info.IsDir() || s.linkDir)
}

func (s *Status) IsSymLink() bool {
	return s.ok() && s.info.Mode()&os.ModeSymlink != 0
}

func (s *Status) IsExecutable() bool {
	return s.accessible(unix.S_IXOTH, unix.S_IXGRP, unix.S_IXUSR)
}

func (s *Status) IsWritable() bool {
	return s.accessible(unix.S_IWOTH, unix.S_IWGRP, unix.S_IWUSR)
}

func (s *Status) IsReadable() bool {
	return s.accessible(unix.S_IROTH, unix.S_IRGRP, unix.S_IRUSR)
}

// accessible applies the other bits unconditionally, the owner bits when the
// process's effective uid owns the file and the group bits when its
// effective gid does.
func (s *Status) accessible(other, group, owner uint32) bool {
	st := s.Native()
	if st == nil {
		return false
	}

	mode := st.Mode
	switch {
	case mode&other != 0:
		return true
	case st.Uid == uint32(unix.Geteuid()) && mode&owner != 0:
		return true
	case st.Gid == uint32(unix.Getegid()) && mode&group != 0:
		return true
	}

	return false
}

func (s *Status) Size() int64 {
	if !s.ok() {
		return 0
	}
	return s.info.Size()
}

func (s *Status) ModTime() time.Time {
	if !s.ok() {
		return time.Time{}
	}
	return s.info.ModTime()
}

func (s *Status) UID() uint32 {
	if st := s.Native(); st != nil {
		return st.Uid
	}
	return 0
}

func (s *Status) GID() uint32 {
	if st := s.Native(); st != nil {
		return st.Gid
	}
	return 0
}

func (s *Status) Info() os.FileInfo {
	if !s.ok() {
		return nil
	}
	return s.info
}

// Native returns the raw lstat record, or nil if resolution failed.
func (s *Status) Native() *syscall.Stat_t {
	if !s.ok() {
		return nil
	}

	st, _ := s.info.Sys().(*syscall.Stat_t)
	return st
}
