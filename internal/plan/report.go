package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"notion-importer/internal/analyze"
	"notion-importer/internal/common"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
	"notion-importer/internal/match"
)

// FieldStatus summarizes the binding state of one field.
type FieldStatus string

const (
	StatusMapped       FieldStatus = "mapped"
	StatusReview       FieldStatus = "review"
	StatusUnmapped     FieldStatus = "unmapped"
	StatusNonMatchable FieldStatus = "non-matchable"
)

// Report describes a model for review: which field takes which property and
// how confident the name ranking is.
type Report struct {
	Name        string
	Root        analyze.TypeID
	Target      analyze.TypeID
	Mode        mapping.Mode
	Collection  string
	Fields      []FieldReport
	Diagnostics diagnostic.Diagnostics
}

// FieldReport describes a single field of the report.
type FieldReport struct {
	Field      string
	Type       string
	Property   string
	Score      float64
	Status     FieldStatus
	Reason     string
	Candidates []CandidateReport
}

// CandidateReport describes a potential property for a field.
type CandidateReport struct {
	Property string
	Score    float64
}

// maxCandidates is the number of alternatives listed per field.
const maxCandidates = 3

// GenerateReport creates a report from a model and the diagnostics of its
// resolution. diags may be nil.
func GenerateReport(name string, m *mapping.Model, diags *diagnostic.Diagnostics) *Report {
	report := &Report{
		Name:       name,
		Root:       m.Root.ID,
		Target:     m.Target().ID,
		Mode:       m.Mode,
		Collection: m.CollectionField,
		Fields:     make([]FieldReport, 0, len(m.Items)),
	}

	if diags != nil {
		report.Diagnostics.Merge(*diags)
	}

	for _, it := range m.Items {
		report.Fields = append(report.Fields, fieldReport(it))
	}

	return report
}

func fieldReport(it *mapping.Item) FieldReport {
	fr := FieldReport{
		Field:  it.Field.Name,
		Type:   it.Field.TypeName,
		Status: StatusUnmapped,
	}

	for _, c := range it.Ranked.Top(maxCandidates) {
		fr.Candidates = append(fr.Candidates, CandidateReport{Property: c.Property.Name, Score: c.CombinedScore})
	}

	if it.NonMatchable {
		fr.Status = StatusNonMatchable
		fr.Reason = it.Reason

		return fr
	}

	p, ok := it.Property()
	if !ok {
		return fr
	}

	fr.Property = p.Name
	fr.Status = StatusMapped

	for _, c := range it.Ranked {
		if c.Index == it.PropertyIndex {
			fr.Score = c.CombinedScore
			break
		}
	}

	best, _ := common.First(it.Ranked)

	switch {
	case it.Compat.Verdict == match.VerdictFallback:
		fr.Status = StatusReview
		fr.Reason = it.Compat.Reason
	case it.Ranked.HighConfidence(match.DefaultMinScore, match.DefaultMinGap) == nil && best.Index == it.PropertyIndex:
		fr.Status = StatusReview
		fr.Reason = "low confidence or ambiguous name match"
	}

	return fr
}

// NeedsReview reports whether any matchable field is unbound or uncertain.
func (r *Report) NeedsReview() bool {
	for _, f := range r.Fields {
		if f.Status == StatusUnmapped || f.Status == StatusReview {
			return true
		}
	}

	return false
}

// Count returns the number of fields with the given status.
func (r *Report) Count(status FieldStatus) int {
	n := 0

	for _, f := range r.Fields {
		if f.Status == status {
			n++
		}
	}

	return n
}

// FormatReport writes a report as a table followed by its diagnostics.
func FormatReport(w io.Writer, r *Report) {
	target := r.Target.Short()
	if r.Mode.IsCollection() {
		target = fmt.Sprintf("%s.%s[] (%s of %s)", r.Root.Short(), r.Collection, r.Mode, r.Target.Short())
	}

	fmt.Fprintf(w, "=== %s -> %s ===\n", r.Name, target)
	fmt.Fprintf(w, "Mapped: %d, Review: %d, Unmapped: %d, Non-matchable: %d\n",
		r.Count(StatusMapped), r.Count(StatusReview), r.Count(StatusUnmapped), r.Count(StatusNonMatchable))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Type", "Property", "Score", "Status", "Notes"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, f := range r.Fields {
		score := ""
		if f.Property != "" {
			score = fmt.Sprintf("%.0f%%", f.Score*100)
		}

		table.Append([]string{f.Field, f.Type, f.Property, score, string(f.Status), notes(f)})
	}

	table.Render()

	for _, d := range r.Diagnostics.All() {
		fmt.Fprintf(w, "  %s %s\n", d.Severity, d)
	}

	if r.NeedsReview() {
		fmt.Fprintln(w, "⚠ This definition needs manual review.")
	} else {
		fmt.Fprintln(w, "✓ All matchable fields mapped.")
	}
}

func notes(f FieldReport) string {
	if f.Status == StatusMapped {
		return ""
	}

	var parts []string
	if f.Reason != "" {
		parts = append(parts, f.Reason)
	}

	if f.Status == StatusUnmapped && len(f.Candidates) > 0 {
		names := make([]string, len(f.Candidates))
		for i, c := range f.Candidates {
			names[i] = fmt.Sprintf("%s (%.0f%%)", c.Property, c.Score*100)
		}

		parts = append(parts, "try "+strings.Join(names, ", "))
	}

	return strings.Join(parts, "; ")
}
