// Package fspath maps between a user's virtual view of the site and the
// real filesystem underneath it. Virtual and real paths are distinct types so
// one can never be handed to an API expecting the other without going through
// a Resolver.
package fspath

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// VirtualPath is a slash separated path rooted in the per-user logical tree.
// It is always absolute and clean.
type VirtualPath string

// RealPath is a path on the underlying filesystem.
type RealPath string

// ParseVirtual validates and cleans a client supplied path. An empty path is
// rejected here so that nothing downstream has to deal with it.
func ParseVirtual(p string) (VirtualPath, error) {
	if p == "" {
		return "", fmt.Errorf("empty virtual path")
	}

	return VirtualPath(slashClean(p)), nil
}

// slashClean is equivalent to path.Clean("/" + name).
func slashClean(name string) string {
	if name == "" || name[0] != '/' {
		name = "/" + name
	}
	return path.Clean(name)
}

func (p VirtualPath) String() string { return string(p) }

func (p VirtualPath) IsEmpty() bool { return p == "" }

// Join appends name to the path, cleaning the result.
func (p VirtualPath) Join(name string) VirtualPath {
	return VirtualPath(slashClean(path.Join(string(p), name)))
}

func (p VirtualPath) Dir() VirtualPath {
	return VirtualPath(path.Dir(slashClean(string(p))))
}

func (p VirtualPath) Base() string {
	return path.Base(string(p))
}

func (p RealPath) String() string { return string(p) }

func (p RealPath) IsEmpty() bool { return p == "" }

func (p RealPath) Dir() RealPath {
	return RealPath(filepath.Dir(string(p)))
}

func (p RealPath) Join(name string) RealPath {
	return RealPath(filepath.Join(string(p), name))
}

// Resolver converts between virtual and real paths for a site rooted at Root.
// It holds no other state and performs no I/O.
type Resolver struct {
	root string
}

func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, fmt.Errorf("empty site root")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve site root %q: %w", root, err)
	}

	return &Resolver{root: filepath.Clean(abs)}, nil
}

func (r *Resolver) Root() RealPath {
	return RealPath(r.root)
}

// MakeReal maps a virtual path onto the site root. Because the virtual path is
// cleaned against "/" first, ".." components can never climb above the root.
func (r *Resolver) MakeReal(p VirtualPath) RealPath {
	return RealPath(filepath.Join(r.root, filepath.FromSlash(slashClean(string(p)))))
}

// MakeVirtual is the inverse of MakeReal. Paths outside the site root are
// reported relative to "/" using only their base name, which is what a client
// would see if such a file were ever exposed.
func (r *Resolver) MakeVirtual(p RealPath) VirtualPath {
	cleaned := filepath.Clean(string(p))
	if cleaned == r.root {
		return "/"
	}

	rel, err := filepath.Rel(r.root, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return VirtualPath("/" + filepath.Base(cleaned))
	}

	return VirtualPath(slashClean(filepath.ToSlash(rel)))
}
