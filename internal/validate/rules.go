package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
)

// MinLength flags artifacts shorter than Min bytes.
type MinLength struct {
	RuleID   string
	Min      int
	Severity Severity
}

func (r MinLength) ID() string {
	if r.RuleID != "" {
		return r.RuleID
	}
	return "min_length"
}

func (r MinLength) RuleSeverity() Severity { return r.Severity }

func (r MinLength) Check(artifact string) []Issue {
	if len(artifact) >= r.Min {
		return nil
	}
	return []Issue{{
		Kind:     "min_length",
		Message:  fmt.Sprintf("artifact is %d bytes, below the required minimum of %d", len(artifact), r.Min),
		Severity: r.Severity,
	}}
}

// RequiredMarkers flags each configured marker string missing from the
// artifact.
type RequiredMarkers struct {
	RuleID   string
	Markers  []string
	Severity Severity
}

func (r RequiredMarkers) ID() string {
	if r.RuleID != "" {
		return r.RuleID
	}
	return "required_markers"
}

func (r RequiredMarkers) RuleSeverity() Severity { return r.Severity }

func (r RequiredMarkers) Check(artifact string) []Issue {
	var issues []Issue
	for _, marker := range r.Markers {
		if !strings.Contains(artifact, marker) {
			issues = append(issues, Issue{
				Kind:     "required_markers",
				Message:  fmt.Sprintf("mandatory marker %q not found", marker),
				Severity: r.Severity,
			})
		}
	}
	return issues
}

// NearDuplicate flags pairs of artifact blocks whose normalized similarity
// is at or above Threshold. Blocks are separated by blank lines; blocks
// shorter than MinBlockLen are ignored.
type NearDuplicate struct {
	RuleID      string
	Threshold   float64
	MinBlockLen int
	Severity    Severity
}

func (r NearDuplicate) ID() string {
	if r.RuleID != "" {
		return r.RuleID
	}
	return "near_duplicate"
}

func (r NearDuplicate) RuleSeverity() Severity { return r.Severity }

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizeBlock(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func (r NearDuplicate) Check(artifact string) []Issue {
	minLen := r.MinBlockLen
	if minLen <= 0 {
		minLen = 32
	}

	var blocks []string
	for _, raw := range strings.Split(artifact, "\n\n") {
		norm := normalizeBlock(raw)
		if len(norm) >= minLen {
			blocks = append(blocks, norm)
		}
	}

	params := levenshtein.NewParams()
	var issues []Issue
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			// Match aborts early once the score cannot reach the minimum,
			// which keeps the quadratic pass in the low milliseconds.
			score := levenshtein.Match(blocks[i], blocks[j], params.MinScore(r.Threshold))
			if score >= r.Threshold {
				issues = append(issues, Issue{
					Kind:     "near_duplicate",
					Message:  fmt.Sprintf("blocks %d and %d are near-duplicates (similarity %.2f)", i, j, score),
					Severity: r.Severity,
				})
			}
		}
	}
	return issues
}

// Contradiction flags artifacts in which two mutually-exclusive patterns
// both appear.
type Contradiction struct {
	RuleID   string
	First    *regexp.Regexp
	Second   *regexp.Regexp
	Severity Severity
}

func (r Contradiction) ID() string {
	if r.RuleID != "" {
		return r.RuleID
	}
	return "contradiction"
}

func (r Contradiction) RuleSeverity() Severity { return r.Severity }

func (r Contradiction) Check(artifact string) []Issue {
	if r.First == nil || r.Second == nil {
		return nil
	}
	if !r.First.MatchString(artifact) || !r.Second.MatchString(artifact) {
		return nil
	}
	return []Issue{{
		Kind:     "contradiction",
		Message:  fmt.Sprintf("mutually-exclusive patterns %q and %q both present", r.First, r.Second),
		Severity: r.Severity,
	}}
}
