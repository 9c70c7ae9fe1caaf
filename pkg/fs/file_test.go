package fs

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
)

func TestCreateRecordsOwner(t *testing.T) {
	tc := newTestCase(t, Config{MinFreeMB: 100, DlIncomplete: true})

	f, err := tc.svc.Create(alice, "/incoming/x")
	require.NoErrorf(t, err, "Create failed: %s", err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	owner, ok := tc.owners.Lookup(tc.real("/incoming/x"))
	require.True(t, ok)
	require.Equal(t, Owner{UID: 1001, GID: 100}, owner)
	require.Equal(t, "hello", tc.readFile("/incoming/x"))
}

func TestCreateModeFollowsDlIncomplete(t *testing.T) {
	for _, dlIncomplete := range []bool{true, false} {
		tc := newTestCase(t, Config{DlIncomplete: dlIncomplete})

		f, err := tc.svc.Create(alice, "/incoming/m")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		info, err := os.Stat(tc.real("/incoming/m").String())
		require.NoError(t, err)
		require.Equal(t, dlIncomplete, info.Mode().Perm()&0100 != 0)
	}
}

func TestCreateExistingNeedsOverwrite(t *testing.T) {
	tc := newTestCase(t, Config{})

	f, err := tc.svc.Create(alice, "/incoming/x")
	require.NoError(t, err)
	_, _ = f.WriteString("first")
	require.NoError(t, f.Close())

	// alice may upload but not overwrite.
	_, err = tc.svc.Create(alice, "/incoming/x")
	require.Error(t, err)
	require.True(t, IsPolicyDenied(err))
	require.Equal(t, syscall.EEXIST, ErrnoOf(err))
	require.Equal(t, "first", tc.readFile("/incoming/x"))

	// bob may overwrite, which truncates and takes ownership.
	f, err = tc.svc.Create(bob, "/incoming/x")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "", tc.readFile("/incoming/x"))

	owner, _ := tc.owners.Lookup(tc.real("/incoming/x"))
	require.Equal(t, 1002, owner.UID)
}

func TestCreateDenied(t *testing.T) {
	tc := newTestCase(t, Config{})

	_, err := tc.svc.Create(mallory, "/incoming/x")
	require.True(t, IsPolicyDenied(err))
	require.Equal(t, syscall.EACCES, ErrnoOf(err))
	require.False(t, tc.exists("/incoming/x"))

	_, err = tc.svc.Create(alice, "/pub/x")
	require.True(t, IsPolicyDenied(err))
	require.False(t, tc.exists("/pub/x"))
}

func TestCreateAndAppendRespectFreeSpaceFloor(t *testing.T) {
	tc := newTestCase(t, Config{MinFreeMB: 100})
	tc.writeFile("/incoming/partial", "0123456789", 0644)
	tc.free = 99 * 1024 * 1024

	_, err := tc.svc.Create(alice, "/incoming/new")
	require.Error(t, err)
	require.Equal(t, KindOS, KindOf(err))
	require.Equal(t, syscall.ENOSPC, ErrnoOf(err))
	require.False(t, tc.exists("/incoming/new"))

	_, err = tc.svc.Append(alice, "/incoming/partial", 2)
	require.Equal(t, syscall.ENOSPC, ErrnoOf(err))
	require.Equal(t, "0123456789", tc.readFile("/incoming/partial"))

	// Exactly at the floor is enough.
	tc.free = 100 * 1024 * 1024
	f, err := tc.svc.Create(alice, "/incoming/new")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestAppendTruncatesToOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
		want   string
	}{
		{name: "below size truncates", offset: 4, want: "0123abc"},
		{name: "at size appends", offset: 10, want: "0123456789abc"},
		{name: "past size appends at end", offset: 50, want: "0123456789abc"},
		{name: "zero restarts", offset: 0, want: "abc"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tc := newTestCase(t, Config{})
			tc.writeFile("/incoming/resume", "0123456789", 0644)

			f, err := tc.svc.Append(alice, "/incoming/resume", test.offset)
			require.NoErrorf(t, err, "Append failed: %s", err)
			_, err = f.WriteString("abc")
			require.NoError(t, err)
			require.NoError(t, f.Close())

			require.Equal(t, test.want, tc.readFile("/incoming/resume"))
		})
	}
}

func TestAppendMissingFile(t *testing.T) {
	tc := newTestCase(t, Config{})

	_, err := tc.svc.Append(alice, "/incoming/nope", 0)
	require.Equal(t, KindOS, KindOf(err))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = tc.svc.Append(mallory, "/incoming/nope", 0)
	require.True(t, IsPolicyDenied(err))
}

func TestOpen(t *testing.T) {
	tc := newTestCase(t, Config{})
	tc.writeFile("/pub/readme", "read me", 0644)

	f, err := tc.svc.Open(alice, "/pub/readme")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	buf := make([]byte, 7)
	_, err = f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "read me", string(buf))

	_, ok := tc.owners.Lookup(tc.real("/pub/readme"))
	require.False(t, ok)

	_, err = tc.svc.Open(mallory, "/pub/readme")
	require.True(t, IsPolicyDenied(err))

	_, err = tc.svc.Open(alice, "/pub/missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeleteRemovesOwner(t *testing.T) {
	tc := newTestCase(t, Config{})
	f, err := tc.svc.Create(alice, "/incoming/gone")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, tc.svc.Delete(alice, "/incoming/gone"))
	require.False(t, tc.exists("/incoming/gone"))
	_, ok := tc.owners.Lookup(tc.real("/incoming/gone"))
	require.False(t, ok)
}

func TestDeleteFailureKeepsOwner(t *testing.T) {
	tc := newTestCase(t, Config{})
	p := tc.real("/incoming/phantom")
	tc.owners.Assign(p, Owner{UID: 1, GID: 1})

	err := tc.svc.Delete(alice, "/incoming/phantom")
	require.Equal(t, syscall.ENOENT, ErrnoOf(err))
	_, ok := tc.owners.Lookup(p)
	require.True(t, ok)

	tc.writeFile("/incoming/kept", "x", 0644)
	err = tc.svc.Delete(mallory, "/incoming/kept")
	require.True(t, IsPolicyDenied(err))
	require.True(t, tc.exists("/incoming/kept"))
}

func TestDeleteWithStat(t *testing.T) {
	tc := newTestCase(t, Config{})
	tc.writeFile("/incoming/sized", "12345", 0644)
	mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(tc.real("/incoming/sized").String(), mtime, mtime))

	size, modTime, err := tc.svc.DeleteWithStat(alice, "/incoming/sized")
	require.NoError(t, err)
	require.Equal(t, int64(5), size)
	require.True(t, modTime.Equal(mtime))
	require.False(t, tc.exists("/incoming/sized"))

	_, _, err = tc.svc.DeleteWithStat(alice, "/incoming/sized")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenameMovesOwner(t *testing.T) {
	tc := newTestCase(t, Config{})
	f, err := tc.svc.Create(alice, "/incoming/a")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// bob renames alice's file; ownership stays with alice.
	require.NoError(t, tc.svc.Rename(bob, "/incoming/a", "/incoming/b"))
	require.False(t, tc.exists("/incoming/a"))
	require.True(t, tc.exists("/incoming/b"))

	_, ok := tc.owners.Lookup(tc.real("/incoming/a"))
	require.False(t, ok)
	owner, ok := tc.owners.Lookup(tc.real("/incoming/b"))
	require.True(t, ok)
	require.Equal(t, OwnerOf(alice), owner)
}

func TestRenameUnknownOwnerClearsDestination(t *testing.T) {
	tc := newTestCase(t, Config{})
	tc.writeFile("/incoming/untracked", "x", 0644)
	tc.owners.Assign(tc.real("/incoming/dest"), Owner{UID: 9, GID: 9})

	require.NoError(t, tc.svc.Rename(alice, "/incoming/untracked", "/incoming/dest"))
	_, ok := tc.owners.Lookup(tc.real("/incoming/dest"))
	require.False(t, ok)
}

func TestRenameFailureRestoresOwner(t *testing.T) {
	tc := newTestCase(t, Config{})
	f, err := tc.svc.Create(alice, "/incoming/a")
	require.NoError(t, err)
	_, _ = f.WriteString("keep")
	require.NoError(t, f.Close())

	// The destination directory does not exist so the OS rename fails.
	err = tc.svc.Rename(alice, "/incoming/a", "/incoming/missing/b")
	require.Equal(t, KindOS, KindOf(err))
	require.Equal(t, syscall.ENOENT, ErrnoOf(err))

	owner, ok := tc.owners.Lookup(tc.real("/incoming/a"))
	require.True(t, ok)
	require.Equal(t, OwnerOf(alice), owner)
	require.Equal(t, "keep", tc.readFile("/incoming/a"))
}

func TestRenameChecksBothEnds(t *testing.T) {
	tc := newTestCase(t, Config{})
	tc.writeFile("/incoming/a", "x", 0644)
	tc.writeFile("/pub/p", "x", 0644)

	// No Upload into /pub.
	err := tc.svc.Rename(alice, "/incoming/a", "/pub/a")
	require.True(t, IsPolicyDenied(err))
	require.True(t, tc.exists("/incoming/a"))

	// No Rename out of /pub.
	err = tc.svc.Rename(alice, "/pub/p", "/incoming/p")
	require.True(t, IsPolicyDenied(err))
	require.True(t, tc.exists("/pub/p"))
}

func TestUniqueFile(t *testing.T) {
	tc := newTestCase(t, Config{})

	p, err := tc.svc.UniqueFile(alice, "/incoming", 8)
	require.NoError(t, err)
	require.Equal(t, fspath.VirtualPath("/incoming"), p.Dir())
	require.Len(t, p.Base(), 8)
	require.False(t, tc.exists(p.String()))

	err = NewStatus(tc.real(p.String())).Resolve()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestUniqueFileSkipsExistingNames(t *testing.T) {
	names := []string{"taken1", "taken2", "freeone"}
	next := 0
	gen := func(int) (string, error) {
		n := names[next]
		next++
		return n, nil
	}

	tc := newTestCase(t, Config{}, WithNameGenerator(gen))
	tc.writeFile("/incoming/taken1", "", 0644)
	tc.writeFile("/incoming/taken2", "", 0644)

	calls := tc.checker.calls.Load()
	p, err := tc.svc.UniqueFile(alice, "/incoming", 6)
	require.NoError(t, err)
	require.Equal(t, fspath.VirtualPath("/incoming/freeone"), p)

	// One Upload check for the directory, none per candidate.
	require.Equal(t, calls+1, tc.checker.calls.Load())
}

func TestUniqueFileExhausted(t *testing.T) {
	attempts := 0
	gen := func(int) (string, error) {
		attempts++
		return "taken", nil
	}

	tc := newTestCase(t, Config{}, WithNameGenerator(gen))
	tc.writeFile("/incoming/taken", "", 0644)

	_, err := tc.svc.UniqueFile(alice, "/incoming", 5)
	require.True(t, IsExhausted(err))
	require.Equal(t, syscall.Errno(0), ErrnoOf(err))
	require.Equal(t, 1000, attempts)
}

func TestUniqueFileErrors(t *testing.T) {
	tc := newTestCase(t, Config{})

	_, err := tc.svc.UniqueFile(mallory, "/incoming", 8)
	require.True(t, IsPolicyDenied(err))

	_, err = tc.svc.UniqueFile(alice, "/incoming", 0)
	require.Equal(t, KindLogic, KindOf(err))

	// A candidate under a regular file fails with ENOTDIR, not ENOENT.
	tc.writeFile("/incoming/file", "", 0644)
	_, err = tc.svc.UniqueFile(alice, "/incoming/file", 4)
	require.Equal(t, KindOS, KindOf(err))
	require.Equal(t, syscall.ENOTDIR, ErrnoOf(err))
}

func TestIsIncomplete(t *testing.T) {
	tc := newTestCase(t, Config{})
	tc.writeFile("/incoming/plain", "x", 0644)
	tc.writeFile("/incoming/uploading", "x", 0755)

	mtime := time.Now().Add(-time.Minute)
	for _, p := range []string{"/incoming/plain", "/incoming/uploading"} {
		require.NoError(t, os.Chtimes(tc.real(p).String(), mtime, mtime))
	}

	tc.now = mtime.Add(10 * time.Second)
	require.False(t, tc.svc.IsIncomplete(tc.real("/incoming/plain")))
	require.True(t, tc.svc.IsIncomplete(tc.real("/incoming/uploading")))

	tc.now = mtime.Add(31 * time.Second)
	require.False(t, tc.svc.IsIncomplete(tc.real("/incoming/uploading")))

	require.False(t, tc.svc.IsIncomplete(tc.real("/incoming/missing")))
}

func TestEmptyPathIsLogicError(t *testing.T) {
	tc := newTestCase(t, Config{})

	err := tc.svc.Delete(alice, "")
	require.Equal(t, KindLogic, KindOf(err))
}
