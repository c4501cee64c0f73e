package cohesion

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/stat"
)

// Component is one group of related blocks inside a flagged unit.
type Component struct {
	// MemberNames labels the blocks in this component: method names for
	// classes, positional block labels for functions.
	MemberNames []string `json:"member_names"`
	// SharedIdentifiers are the names the component's blocks have in common.
	SharedIdentifiers []string `json:"shared_identifiers,omitempty"`
	// BlockTypeTags are the control-structure kinds of the blocks.
	BlockTypeTags []string `json:"block_type_tags"`
	// LineRanges are "start-end" spans for each block.
	LineRanges []string `json:"line_ranges"`
}

// Finding is one unit whose blocks split into multiple components.
type Finding struct {
	Path              string      `json:"path"`
	UnitKind          UnitKind    `json:"unit_kind"`
	UnitName          string      `json:"unit_name"`
	StartLine         int         `json:"start_line"`
	EndLine           int         `json:"end_line"`
	ComponentCount    int         `json:"component_count"`
	AvgOverlapPercent float64     `json:"avg_overlap_percent"`
	Threshold         int         `json:"threshold"`
	Components        []Component `json:"components"`
	Fingerprint       string      `json:"fingerprint"`
}

// Location returns the finding's position as path:line.
func (f *Finding) Location() string {
	return fmt.Sprintf("%s:%d", f.Path, f.StartLine)
}

// fingerprint derives a stable id for a finding so runs can be compared
// across revisions. It hashes the unit's identity rather than its contents.
func fingerprint(path string, kind UnitKind, name string, startLine int) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%s|%d", path, kind, name, startLine)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Summary aggregates a full analysis run.
type Summary struct {
	TotalFiles        int     `json:"total_files"`
	UnitsAnalyzed     int     `json:"units_analyzed"`
	FunctionsFlagged  int     `json:"functions_flagged"`
	ClassesFlagged    int     `json:"classes_flagged"`
	MaxComponents     int     `json:"max_components"`
	AvgOverlapPercent float64 `json:"avg_overlap_percent"`
}

// Analysis is the result of a cohesion run over a set of files.
type Analysis struct {
	GeneratedAt time.Time `json:"generated_at"`
	Findings    []Finding `json:"findings"`
	Summary     Summary   `json:"summary"`
}

// CalculateSummary recomputes the summary from the current findings.
func (a *Analysis) CalculateSummary() {
	s := Summary{
		TotalFiles:    a.Summary.TotalFiles,
		UnitsAnalyzed: a.Summary.UnitsAnalyzed,
	}
	var overlaps []float64
	for i := range a.Findings {
		f := &a.Findings[i]
		switch f.UnitKind {
		case UnitClass:
			s.ClassesFlagged++
		default:
			s.FunctionsFlagged++
		}
		if f.ComponentCount > s.MaxComponents {
			s.MaxComponents = f.ComponentCount
		}
		overlaps = append(overlaps, f.AvgOverlapPercent)
	}
	if len(overlaps) > 0 {
		s.AvgOverlapPercent = round1(stat.Mean(overlaps, nil))
	}
	a.Summary = s
}

// SortFindings orders findings by component count descending, then by
// location, so the most fragmented units surface first.
func (a *Analysis) SortFindings() {
	sort.SliceStable(a.Findings, func(i, j int) bool {
		if a.Findings[i].ComponentCount != a.Findings[j].ComponentCount {
			return a.Findings[i].ComponentCount > a.Findings[j].ComponentCount
		}
		if a.Findings[i].Path != a.Findings[j].Path {
			return a.Findings[i].Path < a.Findings[j].Path
		}
		return a.Findings[i].StartLine < a.Findings[j].StartLine
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
