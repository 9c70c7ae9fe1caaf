package fs

import (
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"golang.org/x/sys/unix"
)

// FreeDiskSpace returns the bytes free on the volume holding path, counting
// blocks reserved for root.
func FreeDiskSpace(path fspath.RealPath) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path.String(), &st); err != nil {
		return 0, err
	}

	return uint64(st.Bsize) * st.Bfree, nil
}
