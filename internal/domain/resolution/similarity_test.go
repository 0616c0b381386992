package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

func TestLevenshteinRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"B12345674", "B12345674", 1.0},
		{"B12345674", "B12345675", 1 - 1.0/9},
		{"B12345674", "B-1234567-4", 1 - 2.0/11},
		{"kitten", "sitting", 1 - 3.0/7},
		{"Ñ1", "N1", 0.5},
		{"€123", "$123", 0.75},
		{"STRAßE", "STRASSE", 1 - 2.0/7},
		{"ÄÖÜ", "ÄÖÜ", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, LevenshteinRatio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, LevenshteinRatio(tt.b, tt.a), 1e-9)
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	assert.InDelta(t, 1.0, SequenceRatio("", ""), 1e-9)
	assert.InDelta(t, 1.0, SequenceRatio("B12345674", "B12345674"), 1e-9)
	assert.InDelta(t, 0.9, SequenceRatio("B12345674", "B-1234567-4"), 1e-9)
	assert.InDelta(t, 0.0, SequenceRatio("abc", ""), 1e-9)
}

func TestSimilarityByName(t *testing.T) {
	fn, err := SimilarityByName("levenshtein")
	require.NoError(t, err)
	assert.InDelta(t, LevenshteinRatio("ab", "ac"), fn("ab", "ac"), 1e-9)

	fn, err = SimilarityByName(" Sequence ")
	require.NoError(t, err)
	assert.InDelta(t, SequenceRatio("ab", "ac"), fn("ab", "ac"), 1e-9)

	fn, err = SimilarityByName("")
	require.NoError(t, err)
	assert.NotNil(t, fn)

	_, err = SimilarityByName("jaro")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "B12345674", canonicalKey("es-b-1234567-4"))
	assert.Equal(t, "B12345674", canonicalKey("ＥＳＢ１２３４５６７４"))
	assert.Equal(t, "X1234567A", canonicalKey("ESX1234567A"))

	assert.Equal(t, "B-1234567-4", displayKey(" es-B-1234567-4 "))
	assert.Equal(t, "B12345674", displayKey("ESB12345674"))
	assert.Equal(t, "B12345674", displayKey("b12345674"))
}
