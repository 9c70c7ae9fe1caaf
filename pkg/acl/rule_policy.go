package acl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

type aclEntry struct {
	deny  bool
	any   bool
	user  string
	group string
}

func (e aclEntry) matches(user *ftpmodel.User) bool {
	switch {
	case e.any:
		return true
	case user == nil:
		return false
	case e.user != "":
		return user.Name == e.user
	default:
		return user.InGroupNamed(e.group)
	}
}

type compiledRule struct {
	kind    OperationKind
	pattern string
	glob    glob.Glob
	entries []aclEntry
}

// RulePolicy evaluates path rules in order. The first rule of the requested
// kind whose pattern matches the path decides: its ACL entries are tried
// left to right and the first that names the user wins. A matching rule with
// no matching entry, or no matching rule at all, denies with EACCES.
type RulePolicy struct {
	mu    sync.RWMutex
	rules []compiledRule
}

func NewRulePolicy(rules []ftpmodel.PathRule) (*RulePolicy, error) {
	p := &RulePolicy{}
	if err := p.Replace(rules); err != nil {
		return nil, err
	}

	return p, nil
}

// Replace swaps in a new rule set. Evaluations already running finish
// against the old one.
func (p *RulePolicy) Replace(rules []ftpmodel.PathRule) error {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return err
		}
		compiled = append(compiled, c)
	}

	p.mu.Lock()
	p.rules = compiled
	p.mu.Unlock()
	return nil
}

func (p *RulePolicy) Evaluate(kind OperationKind, user *ftpmodel.User, path string) error {
	p.mu.RLock()
	rules := p.rules
	p.mu.RUnlock()

	for _, r := range rules {
		if r.kind != kind || !r.glob.Match(path) {
			continue
		}

		for _, e := range r.entries {
			if e.matches(user) {
				if e.deny {
					return Denied(kind, path)
				}
				return nil
			}
		}

		return Denied(kind, path)
	}

	return Denied(kind, path)
}

func compileRule(r ftpmodel.PathRule) (compiledRule, error) {
	kind, err := ParseOperationKind(r.Kind)
	if err != nil {
		return compiledRule{}, err
	}

	g, err := glob.Compile(r.Path, '/')
	if err != nil {
		return compiledRule{}, fmt.Errorf("bad path pattern %q: %w", r.Path, err)
	}

	entries, err := parseACL(r.ACL)
	if err != nil {
		return compiledRule{}, fmt.Errorf("rule %s %s: %w", r.Kind, r.Path, err)
	}

	return compiledRule{kind: kind, pattern: r.Path, glob: g, entries: entries}, nil
}

func parseACL(s string) ([]aclEntry, error) {
	var entries []aclEntry
	for _, tok := range strings.Fields(s) {
		var e aclEntry
		if strings.HasPrefix(tok, "!") {
			e.deny = true
			tok = tok[1:]
		}

		switch {
		case tok == "*":
			e.any = true
		case len(tok) > 1 && tok[0] == '-':
			e.user = tok[1:]
		case len(tok) > 1 && tok[0] == '=':
			e.group = tok[1:]
		default:
			return nil, fmt.Errorf("bad acl entry %q", tok)
		}

		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("empty acl")
	}

	return entries, nil
}
