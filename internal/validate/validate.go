// Package validate runs structural checks against the fully assembled
// artifact. Rules are pluggable and carry a severity; only error-severity
// issues fail validation.
package validate

// Severity classifies an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single finding from a rule.
type Issue struct {
	Kind     string
	Message  string
	Severity Severity
}

// Result is the outcome of validating one artifact.
type Result struct {
	OK     bool
	Issues []Issue
}

// Rule checks an assembled artifact. Implementations must be fast; the
// validator runs on every pipeline invocation.
type Rule interface {
	ID() string
	Check(artifact string) []Issue
}

// severityCarrier is implemented by rules with a single configured
// severity, so the effective policy can be audited.
type severityCarrier interface {
	RuleSeverity() Severity
}

// Validator holds an ordered rule set.
type Validator struct {
	rules []Rule
}

// New creates a Validator with the given rules.
func New(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Add appends a rule.
func (v *Validator) Add(r Rule) {
	v.rules = append(v.rules, r)
}

// Validate runs every rule against the artifact. OK is false only when at
// least one error-severity issue was raised.
func (v *Validator) Validate(artifact string) Result {
	res := Result{OK: true}
	for _, rule := range v.rules {
		for _, issue := range rule.Check(artifact) {
			if issue.Severity == SeverityError {
				res.OK = false
			}
			res.Issues = append(res.Issues, issue)
		}
	}
	return res
}

// SeverityPolicy reports the configured severity per rule id, for the run
// metadata audit trail. Rules without a fixed severity report "dynamic".
func (v *Validator) SeverityPolicy() map[string]string {
	policy := make(map[string]string, len(v.rules))
	for _, rule := range v.rules {
		if sc, ok := rule.(severityCarrier); ok {
			policy[rule.ID()] = string(sc.RuleSeverity())
		} else {
			policy[rule.ID()] = "dynamic"
		}
	}
	return policy
}
