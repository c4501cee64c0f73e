package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/facetcode/facet/pkg/analyzer/cohesion"
	"github.com/facetcode/facet/pkg/analyzer/design"
)

// CohesionReport shapes a cohesion analysis for rendering. Structured
// formats serialize the analysis itself.
func CohesionReport(a *cohesion.Analysis) Renderable {
	report := &Report{Title: "Cohesion Analysis", Data: a}

	summary := &Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Files analyzed:    %d\nUnits analyzed:    %d\nFunctions flagged: %d\nClasses flagged:   %d\nMax components:    %d",
			a.Summary.TotalFiles,
			a.Summary.UnitsAnalyzed,
			a.Summary.FunctionsFlagged,
			a.Summary.ClassesFlagged,
			a.Summary.MaxComponents,
		),
	}
	report.Sections = append(report.Sections, summary)

	if len(a.Findings) == 0 {
		report.Sections = append(report.Sections, &Section{
			Content: "No low-cohesion units found.",
		})
		return report
	}

	rows := make([][]string, 0, len(a.Findings))
	for i := range a.Findings {
		f := &a.Findings[i]
		rows = append(rows, []string{
			f.Location(),
			string(f.UnitKind),
			f.UnitName,
			strconv.Itoa(f.ComponentCount),
			fmt.Sprintf("%.1f%%", f.AvgOverlapPercent),
			fmt.Sprintf("%d%%", f.Threshold),
		})
	}
	report.Sections = append(report.Sections, NewTable(
		"Low Cohesion Units",
		[]string{"Location", "Kind", "Unit", "Components", "Avg Overlap", "Threshold"},
		rows, nil, nil,
	))

	report.Sections = append(report.Sections, findingDetails(a.Findings))
	return report
}

// findingDetails lists each finding's disconnected groups.
func findingDetails(findings []cohesion.Finding) *Section {
	details := &Section{Title: "Details"}
	for i := range findings {
		f := &findings[i]
		var lines []string
		for gi, comp := range f.Components {
			line := fmt.Sprintf("group %d: %s", gi+1, strings.Join(comp.MemberNames, ", "))
			if len(comp.SharedIdentifiers) > 0 {
				line += fmt.Sprintf(" (shared: %s)", strings.Join(comp.SharedIdentifiers, ", "))
			}
			lines = append(lines, line)
		}
		details.Sections = append(details.Sections, Section{
			Title:   fmt.Sprintf("%s %s (%s)", f.UnitKind, f.UnitName, f.Location()),
			Content: strings.Join(lines, "\n"),
		})
	}
	return details
}

// DesignReport shapes a design analysis for rendering.
func DesignReport(a *design.Analysis) Renderable {
	report := &Report{Title: "Design Analysis", Data: a}

	rules := make([]string, 0, len(a.Summary.ByRule))
	for rule := range a.Summary.ByRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	var byRule []string
	for _, rule := range rules {
		byRule = append(byRule, fmt.Sprintf("  %s: %d", rule, a.Summary.ByRule[rule]))
	}

	content := fmt.Sprintf("Files analyzed: %d\nIssues found:   %d",
		a.Summary.TotalFiles, a.Summary.TotalIssues)
	if len(byRule) > 0 {
		content += "\n" + strings.Join(byRule, "\n")
	}
	report.Sections = append(report.Sections, &Section{Title: "Summary", Content: content})

	if len(a.Issues) == 0 {
		report.Sections = append(report.Sections, &Section{
			Content: "No design issues found.",
		})
		return report
	}

	rows := make([][]string, 0, len(a.Issues))
	for i := range a.Issues {
		issue := &a.Issues[i]
		rows = append(rows, []string{
			issue.Location(),
			issue.Rule,
			string(issue.Severity),
			issue.Message,
		})
	}
	report.Sections = append(report.Sections, NewTable(
		"Design Issues",
		[]string{"Location", "Rule", "Severity", "Message"},
		rows,
		[]string{"Total", "", "", strconv.Itoa(a.Summary.TotalIssues)},
		nil,
	))

	return report
}
