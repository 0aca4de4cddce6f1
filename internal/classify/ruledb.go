package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleDB is the community cleanup-rule database consulted between explicit
// exclusions and the generic path heuristics.
type RuleDB interface {
	// IsKnownSafe reports whether a normalized path matches a known-safe
	// cleanup rule, and which rule matched.
	IsKnownSafe(path string) (bool, string)
}

// fileRule is one entry in a rule list file.
type fileRule struct {
	Name  string `yaml:"name"`
	Match string `yaml:"match"`
}

type ruleFile struct {
	Rules []fileRule `yaml:"rules"`
}

// FileRuleDB is a RuleDB backed by a YAML rule list loaded at startup.
type FileRuleDB struct {
	rules []fileRule
}

// NewFileRuleDB loads a rule list from a YAML file.
func NewFileRuleDB(path string) (*FileRuleDB, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read rule database: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rule database: %w", err)
	}

	rules := make([]fileRule, 0, len(rf.Rules))
	for _, r := range rf.Rules {
		if r.Match == "" {
			continue
		}
		r.Match = normalizePath(r.Match)
		rules = append(rules, r)
	}

	return &FileRuleDB{rules: rules}, nil
}

// NewStaticRuleDB builds a RuleDB from in-memory name/match pairs, used by
// tests and embedded defaults.
func NewStaticRuleDB(pairs map[string]string) *FileRuleDB {
	rules := make([]fileRule, 0, len(pairs))
	for name, match := range pairs {
		rules = append(rules, fileRule{Name: name, Match: normalizePath(match)})
	}
	return &FileRuleDB{rules: rules}
}

// IsKnownSafe implements RuleDB.
func (db *FileRuleDB) IsKnownSafe(path string) (bool, string) {
	p := normalizePath(path)
	for _, r := range db.rules {
		if strings.Contains(p, r.Match) {
			return true, r.Name
		}
	}
	return false, ""
}

// Len returns the number of loaded rules.
func (db *FileRuleDB) Len() int {
	return len(db.rules)
}
