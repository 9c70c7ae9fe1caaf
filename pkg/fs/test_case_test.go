package fs

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tkjenll/ebftpd/pkg/acl"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

var (
	usersGroup = ftpmodel.Group{ID: 100, Name: "users"}
	alice      = &ftpmodel.User{ID: 1001, Name: "alice", PrimaryGID: 100, PrimaryGroup: &usersGroup}
	bob        = &ftpmodel.User{ID: 1002, Name: "bob", PrimaryGID: 100, PrimaryGroup: &usersGroup}
	mallory    = &ftpmodel.User{ID: 1003, Name: "mallory", PrimaryGID: 300, PrimaryGroup: &ftpmodel.Group{ID: 300, Name: "other"}}
)

var testRules = []ftpmodel.PathRule{
	{Kind: "view", Path: "/hidden/**", ACL: "!*"},
	{Kind: "view", Path: "/**", ACL: "*"},
	{Kind: "download", Path: "/**", ACL: "=users"},
	{Kind: "upload", Path: "/incoming/**", ACL: "=users"},
	{Kind: "resume", Path: "/incoming/**", ACL: "=users"},
	{Kind: "delete", Path: "/incoming/**", ACL: "=users"},
	{Kind: "rename", Path: "/incoming/**", ACL: "=users"},
	{Kind: "overwrite", Path: "/incoming/**", ACL: "-bob"},
}

// countingChecker records how many permission checks reach the engine.
type countingChecker struct {
	Checker
	calls atomic.Int32
}

func (c *countingChecker) FileAllowed(kind acl.OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error {
	c.calls.Add(1)
	return c.Checker.FileAllowed(kind, user, path)
}

func (c *countingChecker) DirAllowed(kind acl.OperationKind, user *ftpmodel.User, path fspath.VirtualPath) error {
	c.calls.Add(1)
	return c.Checker.DirAllowed(kind, user, path)
}

type testCase struct {
	*testing.T
	root     string
	resolver *fspath.Resolver
	checker  *countingChecker
	owners   *OwnerCache
	svc      *FileService
	free     uint64
	now      time.Time
}

func newTestCase(t *testing.T, cfg Config, opts ...Option) *testCase {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "incoming"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pub"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hidden"), 0755))

	resolver, err := fspath.NewResolver(root)
	require.NoError(t, err)

	policy, err := acl.NewRulePolicy(testRules)
	require.NoError(t, err)

	tc := &testCase{
		T:        t,
		root:     root,
		resolver: resolver,
		checker:  &countingChecker{Checker: acl.NewEngine(policy)},
		owners:   NewOwnerCache(),
		free:     1 << 40,
		now:      time.Now(),
	}

	opts = append([]Option{
		WithFreeSpaceFunc(func(fspath.RealPath) (uint64, error) { return tc.free, nil }),
		WithClock(func() time.Time { return tc.now }),
	}, opts...)
	tc.svc = NewFileService(resolver, tc.checker, tc.owners, cfg, opts...)

	return tc
}

func (tc *testCase) real(vpath string) fspath.RealPath {
	return tc.resolver.MakeReal(fspath.VirtualPath(vpath))
}

func (tc *testCase) writeFile(vpath, content string, mode os.FileMode) {
	p := tc.real(vpath).String()
	require.NoError(tc.T, os.WriteFile(p, []byte(content), mode))
	require.NoError(tc.T, os.Chmod(p, mode))
}

func (tc *testCase) readFile(vpath string) string {
	b, err := os.ReadFile(tc.real(vpath).String())
	require.NoError(tc.T, err)
	return string(b)
}

func (tc *testCase) exists(vpath string) bool {
	_, err := os.Lstat(tc.real(vpath).String())
	return err == nil
}
