package fs

import (
	"sync"

	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

// Owner is the site user and primary group a file belongs to. It is tracked
// separately from the on-disk uid/gid, which for a site is usually the
// server's own.
type Owner struct {
	UID int
	GID int
}

func OwnerOf(user *ftpmodel.User) Owner {
	return Owner{UID: user.UID(), GID: user.PrimaryGID}
}

// OwnerCache maps real paths to their Owner. Entries are not persisted; a
// path with no entry simply has no known owner. Safe for concurrent use.
type OwnerCache struct {
	m sync.Map
}

func NewOwnerCache() *OwnerCache {
	return &OwnerCache{}
}

func (c *OwnerCache) Lookup(path fspath.RealPath) (Owner, bool) {
	v, ok := c.m.Load(path)
	if !ok {
		return Owner{}, false
	}

	return v.(Owner), true
}

func (c *OwnerCache) Assign(path fspath.RealPath, owner Owner) {
	c.m.Store(path, owner)
}

func (c *OwnerCache) Remove(path fspath.RealPath) {
	c.m.Delete(path)
}

// Take removes and returns the entry for path in one step.
func (c *OwnerCache) Take(path fspath.RealPath) (Owner, bool) {
	v, ok := c.m.LoadAndDelete(path)
	if !ok {
		return Owner{}, false
	}

	return v.(Owner), true
}
