package tool

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Pastel de Açaí ", "pastel de acai"},
		{"QUEIJO", "queijo"},
		{"pastéis", "pasteis"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchSimilarity(t *testing.T) {
	t.Parallel()

	if got := matchSimilarity("queijo", "queijo"); got != 1.0 {
		t.Errorf("exact match = %v, want 1.0", got)
	}
	if got := matchSimilarity("queijo", "pastel de queijo"); got != 0.9 {
		t.Errorf("containment = %v, want 0.9", got)
	}
	if got := matchSimilarity("queijo", "carne"); got >= matchThreshold {
		t.Errorf("dissimilar score = %v, want below threshold", got)
	}
	if got := matchSimilarity("", "queijo"); got != 0 {
		t.Errorf("empty target = %v, want 0", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"8.5", "R$8,50"},
		{"26", "R$26,00"},
		{"0", "R$0,00"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", tc.in, err)
		}
		if got := formatCurrency(d); got != tc.want {
			t.Errorf("formatCurrency(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
