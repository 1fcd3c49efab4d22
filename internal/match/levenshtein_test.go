package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"createdat", "updatedat", 3},
		{"price", "prices", 1},

		// runes, not bytes
		{"名前", "名称", 1},
		{"ｗｅｉｇｈｔ", "weight", 6},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	assert.InDelta(t, 1.0, LevenshteinNormalized("", ""), 1e-9)
	assert.InDelta(t, 0.0, LevenshteinNormalized("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0-3.0/7.0, LevenshteinNormalized("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 0.5, LevenshteinNormalized("名前", "名称"), 1e-9)
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		minScore float64
		maxScore float64
	}{
		{"Name", "Name", 1, 1},
		{"DropRate", "drop rate", 1, 1},
		{"OwnerID", "Owner", 1, 1},
		{"Weight", "Ｗｅｉｇｈｔ", 1, 1},
		{"UpdatedAt", "Created", 0, 0.6},
		{"Price", "Description", 0, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			score := NameSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}
}

func BenchmarkNameSimilarity(b *testing.B) {
	for range b.N {
		NameSimilarity("CustomerOrderID", "customer order id")
	}
}
