package readme

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

//go:embed schemas/rules.json
var rulesSchema string

// Rule rewrites README lines for one metric.
type Rule struct {
	Metric  string `yaml:"metric"`
	Pattern string `yaml:"pattern"`

	re     *regexp.Regexp
	prefix int
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() ([]Rule, error) { return ParseRules(defaultRules) }

// LoadRules reads a rules YAML file; an empty path yields the defaults.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := ParseRules(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules validates YAML against the rules schema and compiles patterns.
func ParseRules(b []byte) ([]Rule, error) {
	if err := validateRulesYAML(b); err != nil {
		return nil, err
	}
	var f ruleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Metric, err)
		}
		idx := re.SubexpIndex("prefix")
		if idx < 0 {
			return nil, fmt.Errorf("rule %s: pattern has no (?P<prefix>...) group", r.Metric)
		}
		r.re, r.prefix = re, idx
	}
	return f.Rules, nil
}

// rewrite returns the replaced line and whether r matched it.
func (r Rule) rewrite(line, value string) (string, bool) {
	m := r.re.FindStringSubmatchIndex(line)
	if m == nil {
		return line, false
	}
	start, end := m[2*r.prefix], m[2*r.prefix+1]
	if start < 0 {
		return value, true
	}
	return line[start:end] + value, true
}

func validateRulesYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("yaml parse: %w", err)
	}
	jb, err := json.Marshal(v)
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(rulesSchema), gojsonschema.NewBytesLoader(jb))
	if err != nil {
		return err
	}
	if !result.Valid() {
		var buf bytes.Buffer
		for _, e := range result.Errors() {
			buf.WriteString(e.String())
			buf.WriteByte(';')
		}
		return fmt.Errorf("rules invalid: %s", buf.String())
	}
	return nil
}
