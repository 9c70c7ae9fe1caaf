package acl

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

var (
	alice = &ftpmodel.User{ID: 1001, Name: "alice", PrimaryGID: 100, PrimaryGroup: &ftpmodel.Group{ID: 100, Name: "users"}}
	guest = &ftpmodel.User{ID: 1002, Name: "guest", PrimaryGID: 300, PrimaryGroup: &ftpmodel.Group{ID: 300, Name: "guests"}}
)

func TestParseOperationKind(t *testing.T) {
	for k := View; k <= Overwrite; k++ {
		parsed, err := ParseOperationKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	_, err := ParseOperationKind("chmod")
	require.Error(t, err)
	require.Equal(t, "OperationKind(42)", OperationKind(42).String())
}

func TestRulePolicyEvaluation(t *testing.T) {
	policy, err := NewRulePolicy([]ftpmodel.PathRule{
		{Kind: "upload", Path: "/incoming/**", ACL: "!-guest =users"},
		{Kind: "download", Path: "/**", ACL: "*"},
		{Kind: "view", Path: "/private/**", ACL: "-alice"},
		{Kind: "view", Path: "/**", ACL: "*"},
	})
	require.NoError(t, err)
	engine := NewEngine(policy)

	tests := []struct {
		name    string
		kind    OperationKind
		user    *ftpmodel.User
		path    fspath.VirtualPath
		dir     bool
		allowed bool
	}{
		{name: "group upload", kind: Upload, user: alice, path: "/incoming/x", allowed: true},
		{name: "user deny wins first", kind: Upload, user: guest, path: "/incoming/x", allowed: false},
		{name: "no upload rule outside incoming", kind: Upload, user: alice, path: "/pub/x", allowed: false},
		{name: "download anyone", kind: Download, user: guest, path: "/pub/x", allowed: true},
		{name: "no overwrite rule", kind: Overwrite, user: alice, path: "/incoming/x", allowed: false},
		{name: "first matching rule decides", kind: View, user: guest, path: "/private/secret", allowed: false},
		{name: "named user", kind: View, user: alice, path: "/private/secret", allowed: true},
		{name: "dir check sees trailing slash", kind: Upload, user: alice, path: "/incoming", dir: true, allowed: true},
		{name: "file check without slash", kind: Upload, user: alice, path: "/incoming", allowed: false},
		{name: "invalid kind", kind: OperationKind(99), user: alice, path: "/pub", allowed: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var err error
			if test.dir {
				err = engine.DirAllowed(test.kind, test.user, test.path)
			} else {
				err = engine.FileAllowed(test.kind, test.user, test.path)
			}

			if test.allowed {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.True(t, IsDenied(err))
			require.ErrorIs(t, err, syscall.EACCES)
		})
	}
}

func TestRulePolicyReplaceTakesEffect(t *testing.T) {
	policy, err := NewRulePolicy(nil)
	require.NoError(t, err)
	engine := NewEngine(policy)

	require.Error(t, engine.FileAllowed(Delete, alice, "/pub/x"))

	require.NoError(t, policy.Replace([]ftpmodel.PathRule{{Kind: "delete", Path: "/pub/*", ACL: "-alice"}}))
	require.NoError(t, engine.FileAllowed(Delete, alice, "/pub/x"))
}

func TestBadRules(t *testing.T) {
	for _, r := range []ftpmodel.PathRule{
		{Kind: "chmod", Path: "/**", ACL: "*"},
		{Kind: "view", Path: "/**", ACL: ""},
		{Kind: "view", Path: "/**", ACL: "alice"},
	} {
		_, err := NewRulePolicy([]ftpmodel.PathRule{r})
		require.Errorf(t, err, "expected %+v to be rejected", r)
	}
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acl.yaml")
	content := `rules:
  - kind: upload
    path: /incoming/**
    acl: "=users"
  - kind: view
    path: /**
    acl: "*"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rules, err := LoadRulesFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, 1, rules[1].Position)

	policy, err := NewRulePolicyFromFile(path)
	require.NoError(t, err)
	require.NoError(t, policy.Evaluate(Upload, alice, "/incoming/a"))
	require.Error(t, policy.Evaluate(Upload, guest, "/incoming/a"))

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
