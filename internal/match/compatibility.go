package match

import (
	"fmt"
	"slices"

	"notion-importer/internal/analyze"
	"notion-importer/internal/common"
	"notion-importer/internal/notion"
)

// Verdict classifies how a field's property set was derived.
type Verdict int

const (
	// VerdictAny means every property is compatible (string fields).
	VerdictAny Verdict = iota
	// VerdictRestricted means only properties of specific kinds are compatible.
	VerdictRestricted
	// VerdictNone means the field cannot be bound in Normal mode (collections).
	VerdictNone
	// VerdictFallback means the field type is unrecognized and every property
	// is accepted, with a warning.
	VerdictFallback
)

// String returns a human-readable name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictAny:
		return "any"
	case VerdictRestricted:
		return "restricted"
	case VerdictNone:
		return "none"
	case VerdictFallback:
		return "fallback"
	default:
		return common.UnknownStr
	}
}

// CompatibilityResult lists the properties a field can be bound to.
type CompatibilityResult struct {
	Properties []notion.PropertyDescriptor // in schema order
	Verdict    Verdict
	Reason     string // Human-readable explanation
}

// Matchable reports whether at least one property is compatible.
func (r CompatibilityResult) Matchable() bool {
	return len(r.Properties) > 0
}

// IndexOf returns the position of the property id within Properties, or -1.
func (r CompatibilityResult) IndexOf(id string) int {
	return notion.IndexOf(r.Properties, id)
}

// restricted maps semantic kinds to the property kinds that can feed them.
var restricted = map[analyze.SemanticKind][]notion.PropertyType{
	analyze.SemanticNumeric:     {notion.TypeNumber},
	analyze.SemanticBoolean:     {notion.TypeCheckbox},
	analyze.SemanticDateTime:    {notion.TypeDate, notion.TypeCreatedTime, notion.TypeLastEditedTime},
	analyze.SemanticURL:         {notion.TypeURL},
	analyze.SemanticEnum:        {notion.TypeSelect, notion.TypeMultiSelect, notion.TypeRelation},
	analyze.SemanticImage:       {notion.TypeFiles},
	analyze.SemanticStringArray: {notion.TypeRelation, notion.TypeMultiSelect},
}

// AcceptedTypes returns the property kinds compatible with sem, or nil when
// every kind is accepted or none is.
func AcceptedTypes(sem analyze.SemanticType) []notion.PropertyType {
	return slices.Clone(restricted[sem.Kind])
}

// Accepts reports whether a property of kind pt can be bound to a field of sem.
func Accepts(sem analyze.SemanticType, pt notion.PropertyType) bool {
	switch sem.Kind {
	case analyze.SemanticString, analyze.SemanticOpaque:
		return true
	case analyze.SemanticCollection:
		return false
	default:
		return slices.Contains(restricted[sem.Kind], pt)
	}
}

// CompatibleProperties returns the subset of all that can be bound to a
// field of the given semantic type. Input order is preserved.
func CompatibleProperties(sem analyze.SemanticType, all []notion.PropertyDescriptor) CompatibilityResult {
	switch sem.Kind {
	case analyze.SemanticString:
		return CompatibilityResult{
			Properties: slices.Clone(all),
			Verdict:    VerdictAny,
			Reason:     "string fields accept any property",
		}
	case analyze.SemanticCollection:
		return CompatibilityResult{
			Verdict: VerdictNone,
			Reason:  fmt.Sprintf("%s fields are imported through a collection mapping", sem.ElemMode),
		}
	case analyze.SemanticOpaque:
		return CompatibilityResult{
			Properties: slices.Clone(all),
			Verdict:    VerdictFallback,
			Reason:     "unsupported field type, any property accepted",
		}
	}

	accepted := restricted[sem.Kind]

	var props []notion.PropertyDescriptor

	for _, p := range all {
		if slices.Contains(accepted, p.Type) {
			props = append(props, p)
		}
	}

	result := CompatibilityResult{Properties: props, Verdict: VerdictRestricted}
	if len(props) == 0 {
		result.Reason = fmt.Sprintf("no %v property for a %s field", accepted, sem.Kind)
	} else {
		result.Reason = fmt.Sprintf("%s fields accept %v", sem.Kind, accepted)
	}

	return result
}
