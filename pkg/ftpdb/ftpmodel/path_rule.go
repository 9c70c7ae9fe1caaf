package ftpmodel

// PathRule is one persisted access rule. Kind is an operation name
// (view, upload, download, delete, rename, resume, overwrite), Path a glob
// over virtual paths, and ACL a space separated list of identifiers in the
// classic ftpd form: "*" for everyone, "-name" for a user, "=name" for a
// group, any of them prefixed with "!" to deny.
//
// Rules are evaluated in Position order.
type PathRule struct {
	ID       int    `json:"id"`
	Position int    `json:"position" gorm:"index"`
	Kind     string `json:"kind" yaml:"kind"`
	Path     string `json:"path" yaml:"path"`
	ACL      string `json:"acl" yaml:"acl"`
}
