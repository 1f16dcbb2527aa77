package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"whole dollars", "Blue Dream 3.5g $28", 28, true},
		{"space after sign", "now $ 35 each", 35, true},
		{"cents", "$27.50", 27.5, true},
		{"first match wins", "$40 $30 sale", 40, true},
		{"three decimals keep two", "$12.999", 12.99, true},
		{"no dollar sign", "28 dollars", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPrice(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractWeightGrams(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"grams", "Blue Dream 3.5g", 3.5, true},
		{"gram word", "1 gram", 1, true},
		{"grams plural", "28 grams", 28, true},
		{"eighth", "Gelato 1/8 oz $35", 3.5, true},
		{"quarter", "OG 1/4 $60", 7, true},
		{"half", "1/2 ounce", 14, true},
		{"quarter glyph", "Runtz ¼ $60", 7, true},
		{"half glyph", "Runtz ½ $110", 14, true},
		{"bare ounce", "Shake oz $80", 28, true},
		{"bare ounce word", "by the ounce", 28, true},
		{"grams beat fractions", "1/8 (3.5g)", 3.5, true},
		{"non-breaking space", "Blue Dream 3.5\u00a0g $28", 3.5, true},
		{"non-breaking space gram word", "1\u00a0gram", 1, true},
		{"fraction glued to digits", "11/80", 0, false},
		{"no weight", "Pre-roll $10", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractWeightGrams(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractMgTotal(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"plain", "Gummies 100mg $12", 100, true},
		{"spaced", "200 mg", 200, true},
		{"thousands comma", "Tincture 1,000mg", 1000, true},
		{"upper case", "100MG", 100, true},
		{"non-breaking space", "Gummies 100\u00a0mg $12", 100, true},
		{"none", "Gummies $12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractMgTotal(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
