package diagnostic

import (
	"errors"
	"strings"

	"notion-importer/internal/common"
)

// Severity grades a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return common.UnknownStr
	}

	return severityNames[s]
}

// Codes reported by definition resolution and import runs.
const (
	CodeFieldRemoved      = "field_removed"
	CodePropertyRemoved   = "property_removed"
	CodeStalePropertyName = "stale_property_name"
	CodeCoercionFailed    = "coercion_failed"
	CodeRecordSkipped     = "record_skipped"
	CodeNonMatchable      = "non_matchable"
	CodeNestedCollection  = "nested_collection"
	CodeUnknownFieldType  = "unknown_field_type"
	CodeIncompatible      = "incompatible_property"
	CodeUnknownProperty   = "unknown_property_type"
	CodeEmptyGroupKey     = "empty_group_key"
	CodeGroupFiltered     = "group_filtered"
	CodeCollectionChanged = "collection_changed"
)

// Diagnostic is one finding. TypePair names the definition or type it
// belongs to and FieldPath the field, both optional.
type Diagnostic struct {
	Severity  Severity
	Code      string
	Message   string
	TypePair  string
	FieldPath string
}

// String renders "[pair] path: [code] message", leaving out empty parts.
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.TypePair != "" {
		b.WriteString("[" + d.TypePair + "]")
	}

	if d.FieldPath != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(d.FieldPath)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	return b.String()
}

// Diagnostics groups findings by severity. The zero value is empty.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

func (d *Diagnostics) add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

func (d *Diagnostics) AddError(code, message, typePair, fieldPath string) {
	d.add(Diagnostic{SeverityError, code, message, typePair, fieldPath})
}

func (d *Diagnostics) AddWarning(code, message, typePair, fieldPath string) {
	d.add(Diagnostic{SeverityWarning, code, message, typePair, fieldPath})
}

func (d *Diagnostics) AddInfo(code, message, typePair, fieldPath string) {
	d.add(Diagnostic{SeverityInfo, code, message, typePair, fieldPath})
}

// Count returns the number of diagnostics of every severity.
func (d *Diagnostics) Count() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, d.Count())
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// Merge appends the diagnostics of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	for _, diag := range other.All() {
		d.add(diag)
	}
}

// Err joins the error diagnostics into one error, or returns nil.
func (d *Diagnostics) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}

	msgs := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		msgs[i] = e.String()
	}

	return errors.New(strings.Join(msgs, "; "))
}
