package acl

import (
	"os"

	"github.com/pkg/errors"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/stor"
	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []ftpmodel.PathRule `yaml:"rules"`
}

// LoadRulesFile reads rules from YAML of the form
//
//	rules:
//	  - kind: upload
//	    path: /incoming/**
//	    acl: "=users !-guest"
//
// Positions follow file order.
func LoadRulesFile(path string) ([]ftpmodel.PathRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading acl file %s", path)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing acl file %s", path)
	}

	for i := range f.Rules {
		f.Rules[i].Position = i
	}

	return f.Rules, nil
}

func NewRulePolicyFromFile(path string) (*RulePolicy, error) {
	rules, err := LoadRulesFile(path)
	if err != nil {
		return nil, err
	}

	return NewRulePolicy(rules)
}

func NewRulePolicyFromStor(s stor.PathRuleStor) (*RulePolicy, error) {
	rules, err := s.ListPathRules()
	if err != nil {
		return nil, errors.Wrap(err, "listing path rules")
	}

	return NewRulePolicy(rules)
}
