package validate

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ruleSpec is the YAML shape of one configured rule. Severity is mandatory:
// the effective policy is always explicit in config, never a hard-coded
// default.
type ruleSpec struct {
	ID        string   `yaml:"id"`
	Kind      string   `yaml:"kind"`
	Severity  string   `yaml:"severity"`
	Min       int      `yaml:"min"`
	Markers   []string `yaml:"markers"`
	Patterns  []string `yaml:"patterns"`
	Threshold float64  `yaml:"threshold"`
	MinBlock  int      `yaml:"min_block"`
}

type rulePackFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// ParseRulePack decodes a YAML rule pack payload into constructed rules.
func ParseRulePack(data []byte) ([]Rule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("rulepack: payload is empty")
	}
	var pack rulePackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("rulepack: decode: %w", err)
	}
	if len(pack.Rules) == 0 {
		return nil, fmt.Errorf("rulepack: no rules declared")
	}

	rules := make([]Rule, 0, len(pack.Rules))
	for i, spec := range pack.Rules {
		rule, err := buildRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rulepack: rule %d (%s): %w", i, spec.ID, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulePack reads and parses a YAML rule pack from disk.
func LoadRulePack(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulepack: read %s: %w", path, err)
	}
	rules, err := ParseRulePack(data)
	if err != nil {
		return nil, fmt.Errorf("rulepack: %s: %w", path, err)
	}
	return rules, nil
}

func buildRule(spec ruleSpec) (Rule, error) {
	sev, err := parseSeverity(spec.Severity)
	if err != nil {
		return nil, err
	}

	switch spec.Kind {
	case "min_length":
		if spec.Min <= 0 {
			return nil, fmt.Errorf("min_length requires a positive 'min'")
		}
		return MinLength{RuleID: spec.ID, Min: spec.Min, Severity: sev}, nil
	case "required_markers":
		if len(spec.Markers) == 0 {
			return nil, fmt.Errorf("required_markers requires at least one marker")
		}
		return RequiredMarkers{RuleID: spec.ID, Markers: spec.Markers, Severity: sev}, nil
	case "near_duplicate":
		if spec.Threshold <= 0 || spec.Threshold > 1 {
			return nil, fmt.Errorf("near_duplicate requires a threshold in (0, 1]")
		}
		return NearDuplicate{RuleID: spec.ID, Threshold: spec.Threshold, MinBlockLen: spec.MinBlock, Severity: sev}, nil
	case "contradiction":
		if len(spec.Patterns) != 2 {
			return nil, fmt.Errorf("contradiction requires exactly two patterns, got %d", len(spec.Patterns))
		}
		first, err := regexp.Compile(spec.Patterns[0])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", spec.Patterns[0], err)
		}
		second, err := regexp.Compile(spec.Patterns[1])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", spec.Patterns[1], err)
		}
		return Contradiction{RuleID: spec.ID, First: first, Second: second, Severity: sev}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", spec.Kind)
	}
}

func parseSeverity(s string) (Severity, error) {
	switch s {
	case string(SeverityWarning):
		return SeverityWarning, nil
	case string(SeverityError):
		return SeverityError, nil
	case "":
		return "", fmt.Errorf("severity is required ('warning' or 'error')")
	default:
		return "", fmt.Errorf("invalid severity %q: must be 'warning' or 'error'", s)
	}
}
