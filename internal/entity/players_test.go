package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizePlayerName tests OCR repair, diacritics, and punctuation
func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Plain name", input: "Gavin Sheets", want: "gavin sheets"},
		{name: "OCR lan to ian", input: "lan Happ", want: "ian happ"},
		{name: "Diacritics stripped", input: "José Ramírez", want: "jose ramirez"},
		{name: "Punctuation stripped", input: "Ronald Acuna, Jr.", want: "ronald acuna jr"},
		{name: "Hyphen becomes space", input: "Jazz Chisholm-Loo", want: "jazz chisholm loo"},
		{name: "Extra whitespace collapsed", input: "  Yainer   Diaz ", want: "yainer diaz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlayerName(tt.input))
		})
	}
}

// TestNameVariations tests generated lookup forms
func TestNameVariations(t *testing.T) {
	vars := NameVariations("Ronald Acuna Jr.")

	assert.Contains(t, vars, "ronald acuna jr")
	assert.Contains(t, vars, "ronald acuna")
	assert.Contains(t, vars, "acuna ronald")
	assert.Contains(t, vars, "r acuna")
	assert.Contains(t, vars, "ronald a")

	// All variations deduplicated.
	seen := make(map[string]int)
	for _, v := range vars {
		seen[v]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, "variation %q duplicated", v)
	}
}

// TestNameVariations_Empty tests empty input
func TestNameVariations_Empty(t *testing.T) {
	assert.Empty(t, NameVariations("   "))
}

// TestNameSimilarity tests the scoring tiers
func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "Exact after normalization", a: "José Ramírez", b: "jose ramirez", want: 1.0},
		{name: "Suffix difference", a: "Ronald Acuna Jr", b: "Ronald Acuna", want: 0.95},
		{name: "First initial prefix", a: "G Sheets", b: "Gavin Sheets", want: 0.9},
		{name: "Same last same initial", a: "Gary Sheets", b: "Gavin Sheets", want: 0.8},
		{name: "Substring fallback", a: "Sheets", b: "Gavin Sheets", want: 0.6},
		{name: "Unrelated", a: "Gavin Sheets", b: "Yainer Diaz", want: 0.0},
		{name: "Empty input", a: "", b: "Gavin Sheets", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameSimilarity(tt.a, tt.b))
		})
	}
}

// TestNameSimilarity_OCRRepair tests that the misread table feeds matching
func TestNameSimilarity_OCRRepair(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("lan Happ", "Ian Happ"))
}
