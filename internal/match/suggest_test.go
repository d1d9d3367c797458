package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var options = []string{"root", "attribute", "rename", "text", "flatten"}

func TestSuggest(t *testing.T) {
	tests := []struct {
		word string
		want []string
	}{
		{"atribute", []string{"attribute"}},
		{"attr", nil},
		{"flaten", []string{"flatten"}},
		{"renam", []string{"rename"}},
		{"txt", []string{"text"}},
		{"Text", []string{"text"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.word, options, 1))
		})
	}
}

func TestSuggest_FieldNames(t *testing.T) {
	fields := []string{"Year", "Month", "Day", "Extra", "OptionalExtra"}

	assert.Equal(t, []string{"OptionalExtra"}, Suggest("optional_extra", fields, 1))
	assert.Equal(t, []string{"Extra"}, Suggest("Extras", fields, 0))
}

func TestRankCandidates(t *testing.T) {
	ranked := RankCandidates("rename", options)
	require.Len(t, ranked, len(options))

	assert.Equal(t, "rename", ranked[0].Name)
	assert.Equal(t, 0, ranked[0].Distance)
	assert.InDelta(t, 1.0, ranked[0].Score, 0.001)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}
