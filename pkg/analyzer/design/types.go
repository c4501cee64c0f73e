package design

import (
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Rule names, used in config disabled_rules and in output.
const (
	RuleMagicNumber      = "magic-number"
	RuleParameterCount   = "parameter-count"
	RuleBooleanFlag      = "boolean-flag"
	RuleNestingDepth     = "nesting-depth"
	RuleFanOut           = "fan-out"
	RuleImportCount      = "import-count"
	RuleIdentifierLength = "identifier-length"
	RuleStaleVariable    = "stale-variable"
)

// Severity ranks how strongly an issue suggests a design problem.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var ruleSeverity = map[string]Severity{
	RuleMagicNumber:      SeverityLow,
	RuleParameterCount:   SeverityMedium,
	RuleBooleanFlag:      SeverityLow,
	RuleNestingDepth:     SeverityMedium,
	RuleFanOut:           SeverityMedium,
	RuleImportCount:      SeverityMedium,
	RuleIdentifierLength: SeverityLow,
	RuleStaleVariable:    SeverityMedium,
}

// Issue is one design rule violation.
type Issue struct {
	Path        string   `json:"path"`
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	Line        int      `json:"line"`
	Message     string   `json:"message"`
	Fingerprint string   `json:"fingerprint"`
}

// Location returns the issue's position as path:line.
func (i *Issue) Location() string {
	return fmt.Sprintf("%s:%d", i.Path, i.Line)
}

func newIssue(path, rule string, line int, message string) Issue {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", path, rule, line, message)
	return Issue{
		Path:        path,
		Rule:        rule,
		Severity:    ruleSeverity[rule],
		Line:        line,
		Message:     message,
		Fingerprint: fmt.Sprintf("%016x", h.Sum64()),
	}
}

// Summary aggregates a design analysis run.
type Summary struct {
	TotalFiles  int            `json:"total_files"`
	TotalIssues int            `json:"total_issues"`
	ByRule      map[string]int `json:"by_rule"`
	BySeverity  map[string]int `json:"by_severity"`
}

// Analysis is the result of a design run over a set of files.
type Analysis struct {
	GeneratedAt time.Time `json:"generated_at"`
	Issues      []Issue   `json:"issues"`
	Summary     Summary   `json:"summary"`
}

// CalculateSummary recomputes issue counts from the current issues.
func (a *Analysis) CalculateSummary() {
	s := Summary{
		TotalFiles: a.Summary.TotalFiles,
		ByRule:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	for i := range a.Issues {
		s.TotalIssues++
		s.ByRule[a.Issues[i].Rule]++
		s.BySeverity[string(a.Issues[i].Severity)]++
	}
	a.Summary = s
}

// SortIssues orders issues by path, then line, then rule.
func (a *Analysis) SortIssues() {
	sort.SliceStable(a.Issues, func(i, j int) bool {
		if a.Issues[i].Path != a.Issues[j].Path {
			return a.Issues[i].Path < a.Issues[j].Path
		}
		if a.Issues[i].Line != a.Issues[j].Line {
			return a.Issues[i].Line < a.Issues[j].Line
		}
		return a.Issues[i].Rule < a.Issues[j].Rule
	})
}
