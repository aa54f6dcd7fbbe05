package normalize

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule maps an alternate provider spelling onto a canonical field name.
// Rules are evaluated in order and never overwrite a field the record
// already carries.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type ruleFile struct {
	Aliases []Rule `yaml:"aliases"`
}

var (
	defaultRulesOnce sync.Once
	defaultRules     []Rule
)

// DefaultRules returns the built-in reconciliation rule table.
func DefaultRules() []Rule {
	defaultRulesOnce.Do(func() {
		var f ruleFile
		if err := yaml.Unmarshal(defaultRulesYAML, &f); err != nil {
			// The table is embedded at build time; a parse failure is a
			// programming error, not a runtime condition.
			panic("normalize: parse embedded rules: " + err.Error())
		}
		defaultRules = f.Aliases
	})
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
