// Package fs performs file operations on behalf of site users. Every entry
// point checks permission first, then works on the real path and keeps the
// OwnerCache in step with what happened on disk.
package fs

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/tkjenll/ebftpd/pkg/acl"
	"github.com/tkjenll/ebftpd/pkg/clog"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"golang.org/x/sys/unix"
)

const (
	uniqueAttempts = 1000

	// incompleteWindow is how recently an executable upload must have been
	// written to still count as in progress.
	incompleteWindow = 30 * time.Second
)

type Config struct {
	// MinFreeMB is the free space, in MiB, that must remain on the target
	// volume for an upload or resume to start.
	MinFreeMB uint64

	// DlIncomplete creates uploads 0755 instead of 0644 so IsIncomplete can
	// spot them.
	DlIncomplete bool
}

type FileService struct {
	resolver *fspath.Resolver
	checker  Checker
	owners   *OwnerCache
	cfg      Config

	freeSpace func(fspath.RealPath) (uint64, error)
	now       func() time.Time
	names     func(n int) (string, error)
	log       *log.Entry
}

type Option func(*FileService)

func WithFreeSpaceFunc(fn func(fspath.RealPath) (uint64, error)) Option {
	return func(s *FileService) { s.freeSpace = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *FileService) { s.now = now }
}

func WithNameGenerator(fn func(n int) (string, error)) Option {
	return func(s *FileService) { s.names = fn }
}

func WithLogger(entry *log.Entry) Option {
	return func(s *FileService) { s.log = entry }
}

func NewFileService(resolver *fspath.Resolver, checker Checker, owners *OwnerCache, cfg Config, opts ...Option) *FileService {
	s := &FileService{
		resolver:  resolver,
		checker:   checker,
		owners:    owners,
		cfg:       cfg,
		freeSpace: FreeDiskSpace,
		now:       time.Now,
		names:     randomAlphaNumeric,
		log:       clog.Ctx("fs"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *FileService) Resolver() *fspath.Resolver {
	return s.resolver
}

func (s *FileService) Owners() *OwnerCache {
	return s.owners
}

// Stat returns a resolved, permission checked Status for vpath.
func (s *FileService) Stat(user *ftpmodel.User, vpath fspath.VirtualPath) (*Status, error) {
	st := NewUserStatus(s.resolver, s.checker, user, vpath)
	if err := st.Resolve(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *FileService) Delete(user *ftpmodel.User, vpath fspath.VirtualPath) error {
	if err := s.allowed("delete", acl.Delete, user, vpath); err != nil {
		return err
	}

	s.log.WithFields(log.Fields{"op": "delete", "path": vpath, "user": user.Name}).Debug("deleting")
	return s.DeleteRealPath(s.resolver.MakeReal(vpath))
}

// DeleteWithStat is Delete that also reports the size and modification time
// the file had. If the file can't be stat'ed nothing is removed.
func (s *FileService) DeleteWithStat(user *ftpmodel.User, vpath fspath.VirtualPath) (int64, time.Time, error) {
	if err := s.allowed("delete", acl.Delete, user, vpath); err != nil {
		return 0, time.Time{}, err
	}

	path := s.resolver.MakeReal(vpath)
	st := NewStatus(path)
	if err := st.Resolve(); err != nil {
		return 0, time.Time{}, osError("delete", path.String(), err)
	}

	if err := s.DeleteRealPath(path); err != nil {
		return 0, time.Time{}, err
	}

	return st.Size(), st.ModTime(), nil
}

// DeleteRealPath unlinks path without a permission check. The owner entry
// is only dropped once the unlink has succeeded.
func (s *FileService) DeleteRealPath(path fspath.RealPath) error {
	if err := unix.Unlink(path.String()); err != nil {
		return osError("delete", path.String(), err)
	}

	s.owners.Remove(path)
	return nil
}

// Rename needs Rename on the source and Upload on the destination.
func (s *FileService) Rename(user *ftpmodel.User, oldPath, newPath fspath.VirtualPath) error {
	if err := s.allowed("rename", acl.Rename, user, oldPath); err != nil {
		return err
	}

	if err := s.allowed("rename", acl.Upload, user, newPath); err != nil {
		return err
	}

	s.log.WithFields(log.Fields{"op": "rename", "path": oldPath, "to": newPath, "user": user.Name}).Debug("renaming")
	return s.RenameRealPath(s.resolver.MakeReal(oldPath), s.resolver.MakeReal(newPath))
}

// RenameRealPath renames without a permission check and moves the owner
// entry with the file. While the rename is in flight neither path has an
// entry. On failure the old entry is put back.
func (s *FileService) RenameRealPath(oldPath, newPath fspath.RealPath) error {
	owner, known := s.owners.Take(oldPath)

	if err := unix.Rename(oldPath.String(), newPath.String()); err != nil {
		if known {
			s.owners.Assign(oldPath, owner)
		}
		return osError("rename", oldPath.String(), err)
	}

	if known {
		s.owners.Assign(newPath, owner)
	} else {
		s.owners.Remove(newPath)
	}

	return nil
}

// Create opens vpath for writing, creating it if needed. An existing file is
// only truncated if the user may also Overwrite it; otherwise the call fails
// as a policy denial carrying EEXIST.
func (s *FileService) Create(user *ftpmodel.User, vpath fspath.VirtualPath) (*os.File, error) {
	if err := s.allowed("create", acl.Upload, user, vpath); err != nil {
		return nil, err
	}

	path := s.resolver.MakeReal(vpath)
	if err := s.checkFreeSpace("create", path); err != nil {
		return nil, err
	}

	var mode os.FileMode = 0644
	if s.cfg.DlIncomplete {
		mode = 0755
	}

	f, err := os.OpenFile(path.String(), os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		if ErrnoOf(err) != syscall.EEXIST {
			return nil, osError("create", path.String(), err)
		}

		if err := s.checker.FileAllowed(acl.Overwrite, user, vpath); err != nil {
			s.denied("create", acl.Overwrite, user, vpath)
			return nil, &Error{Kind: KindPolicyDenied, Op: "create", Path: vpath.String(), Errno: syscall.EEXIST}
		}

		if f, err = os.OpenFile(path.String(), os.O_WRONLY|os.O_TRUNC, 0); err != nil {
			return nil, osError("create", path.String(), err)
		}
	}

	s.owners.Assign(path, OwnerOf(user))
	s.log.WithFields(log.Fields{"op": "create", "path": vpath, "user": user.Name}).Debug("file opened for upload")
	return f, nil
}

// Append opens vpath to resume an upload at offset. A file longer than
// offset is cut back to it first; a shorter one is left alone and writing
// continues from its end.
func (s *FileService) Append(user *ftpmodel.User, vpath fspath.VirtualPath, offset int64) (*os.File, error) {
	if err := s.allowed("append", acl.Resume, user, vpath); err != nil {
		return nil, err
	}

	path := s.resolver.MakeReal(vpath)
	if err := s.checkFreeSpace("append", path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path.String(), os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, osError("append", path.String(), err)
	}

	if err := resumeAt(f, offset); err != nil {
		_ = f.Close()
		return nil, osError("append", path.String(), err)
	}

	s.log.WithFields(log.Fields{"op": "append", "path": vpath, "user": user.Name, "offset": offset}).Debug("file opened for resume")
	return f, nil
}

func resumeAt(f *os.File, offset int64) error {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	if offset < size {
		if err := f.Truncate(offset); err != nil {
			return err
		}
	}

	_, err = f.Seek(0, io.SeekEnd)
	return err
}

func (s *FileService) Open(user *ftpmodel.User, vpath fspath.VirtualPath) (*os.File, error) {
	if err := s.allowed("open", acl.Download, user, vpath); err != nil {
		return nil, err
	}

	path := s.resolver.MakeReal(vpath)
	f, err := os.Open(path.String())
	if err != nil {
		return nil, osError("open", path.String(), err)
	}

	s.log.WithFields(log.Fields{"op": "open", "path": vpath, "user": user.Name}).Debug("file opened for download")
	return f, nil
}

// UniqueFile picks a random alphanumeric name of nameLen characters that
// does not exist in dir. Upload permission is checked once for the
// directory, not for every candidate.
func (s *FileService) UniqueFile(user *ftpmodel.User, dir fspath.VirtualPath, nameLen int) (fspath.VirtualPath, error) {
	if nameLen <= 0 {
		return "", &Error{Kind: KindLogic, Op: "unique", Path: dir.String()}
	}

	if err := s.allowed("unique", acl.Upload, user, dir.Join("dummyfile")); err != nil {
		return "", err
	}

	for i := 0; i < uniqueAttempts; i++ {
		name, err := s.names(nameLen)
		if err != nil {
			return "", osError("unique", dir.String(), err)
		}

		candidate := dir.Join(name)
		err = NewStatus(s.resolver.MakeReal(candidate)).Resolve()
		switch errno := ErrnoOf(err); {
		case err == nil:
			continue
		case errno == syscall.ENOENT:
			return candidate, nil
		default:
			return "", osError("unique", candidate.String(), err)
		}
	}

	return "", &Error{Kind: KindExhausted, Op: "unique", Path: dir.String()}
}

// IsIncomplete reports whether path looks like an upload still in
// progress: executable and written within the last 30 seconds. Stat
// failures count as not incomplete.
func (s *FileService) IsIncomplete(path fspath.RealPath) bool {
	st := NewStatus(path)
	if err := st.Resolve(); err != nil {
		return false
	}

	return st.IsExecutable() && s.now().Sub(st.ModTime()) < incompleteWindow
}

func (s *FileService) checkFreeSpace(op string, path fspath.RealPath) error {
	free, err := s.freeSpace(path.Dir())
	if err != nil {
		return osError(op, path.Dir().String(), err)
	}

	if s.cfg.MinFreeMB > free/1024/1024 {
		s.log.WithFields(log.Fields{"op": op, "path": path, "free": free}).Warn("below free space floor")
		return &Error{Kind: KindOS, Op: op, Path: path.String(), Errno: syscall.ENOSPC}
	}

	return nil
}

func (s *FileService) allowed(op string, kind acl.OperationKind, user *ftpmodel.User, vpath fspath.VirtualPath) error {
	if vpath.IsEmpty() {
		return &Error{Kind: KindLogic, Op: op}
	}

	if err := s.checker.FileAllowed(kind, user, vpath); err != nil {
		s.denied(op, kind, user, vpath)
		return policyError(op, vpath.String(), err)
	}

	return nil
}

func (s *FileService) denied(op string, kind acl.OperationKind, user *ftpmodel.User, vpath fspath.VirtualPath) {
	s.log.WithFields(log.Fields{"op": op, "kind": kind, "path": vpath, "user": user.Name}).Warn("permission denied")
}
