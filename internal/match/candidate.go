package match

import (
	"cmp"
	"slices"

	"notion-importer/internal/analyze"
	"notion-importer/internal/notion"
)

// Candidate is a compatible property scored for one field. Index is the
// property's position in the field's compatible property list.
type Candidate struct {
	Property notion.PropertyDescriptor
	Index    int

	NameScore     float64
	TypeScore     float64
	CombinedScore float64
}

// CandidateList is ordered best first.
type CandidateList []Candidate

// A best candidate is trusted without review when it scores at least
// DefaultMinScore and leads the runner-up by DefaultMinGap.
const (
	DefaultMinScore = 0.7
	DefaultMinGap   = 0.15
)

// RankProperties ranks the properties compatible with field by name
// similarity and kind fit. Ties keep schema order.
func RankProperties(field analyze.FieldInfo, all []notion.PropertyDescriptor) CandidateList {
	compat := CompatibleProperties(field.Semantic, all)

	candidates := make(CandidateList, 0, len(compat.Properties))

	for i, p := range compat.Properties {
		nameScore := max(NameSimilarity(field.Name, p.Name), NameSimilarity(field.JSONName(), p.Name))
		typeScore := typeScore(field.Semantic, compat.Verdict, p.Type)

		candidates = append(candidates, Candidate{
			Property:      p,
			Index:         i,
			NameScore:     nameScore,
			TypeScore:     typeScore,
			CombinedScore: combinedScore(nameScore, typeScore),
		})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.CombinedScore, a.CombinedScore)
	})

	return candidates
}

// typeScore rates how well a property kind fits: kinds that carry text
// natively fit string fields best, the first listed kind fits a restricted
// field best, and fallback fields fit nothing well.
func typeScore(sem analyze.SemanticType, verdict Verdict, pt notion.PropertyType) float64 {
	switch verdict {
	case VerdictAny:
		switch pt {
		case notion.TypeTitle, notion.TypeRichText:
			return 1.0
		case notion.TypeSelect, notion.TypeStatus, notion.TypeEmail, notion.TypePhoneNumber,
			notion.TypeURL, notion.TypeFormula, notion.TypeUniqueID:
			return 0.8
		default:
			return 0.6
		}
	case VerdictRestricted:
		if accepted := restricted[sem.Kind]; len(accepted) > 0 && accepted[0] == pt {
			return 1.0
		}

		return 0.8
	default:
		return 0.4
	}
}

// combinedScore weighs the name at 60% and the kind fit at 40%.
func combinedScore(nameScore, typeScore float64) float64 {
	return 0.6*nameScore + 0.4*typeScore
}

// Top returns at most n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the first candidate, or nil.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// HighConfidence returns the best candidate when it clears minScore and
// leads the runner-up by at least minGap, and nil otherwise.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.CombinedScore < minScore {
		return nil
	}

	if len(c) > 1 && c[0].CombinedScore-c[1].CombinedScore < minGap {
		return nil
	}

	return best
}
