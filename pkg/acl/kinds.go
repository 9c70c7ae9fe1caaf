package acl

import (
	"fmt"
	"strings"
)

// OperationKind selects which rules a permission check consults.
type OperationKind int

const (
	View OperationKind = iota
	Upload
	Download
	Delete
	Rename
	Resume
	Overwrite
)

var kindNames = [...]string{
	View:      "view",
	Upload:    "upload",
	Download:  "download",
	Delete:    "delete",
	Rename:    "rename",
	Resume:    "resume",
	Overwrite: "overwrite",
}

func (k OperationKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("OperationKind(%d)", int(k))
	}
	return kindNames[k]
}

func (k OperationKind) Valid() bool {
	return k >= View && k <= Overwrite
}

func ParseOperationKind(s string) (OperationKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return OperationKind(k), nil
		}
	}

	return 0, fmt.Errorf("unknown operation kind %q", s)
}
