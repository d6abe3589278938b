package slug

import (
	"strings"
	"testing"
)

// TestGenerate exercises the slug generator with typical contract titles,
// special characters, whitespace and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Service Agreement", want: "service-agreement"},
		{name: "title with year", input: "Lease 2026", want: "lease-2026"},
		{name: "single word", input: "NDA", want: "nda"},

		// --- Separators ---
		{name: "underscores", input: "employment_contract_v2", want: "employment-contract-v2"},
		{name: "version dots", input: "Terms v2.0.1", want: "terms-v2-0-1"},
		{name: "parentheses", input: "Employment Agreement (v2.1)", want: "employment-agreement-v2-1"},
		{name: "tabs and newlines", input: "hello\tworld\nagain", want: "hello-world-again"},
		{name: "slashes", input: "Sales/Purchase Order", want: "sales-purchase-order"},
		{name: "accents dropped", input: "Café Résumé", want: "caf-r-sum"},

		// --- Hyphen handling ---
		{name: "leading and trailing", input: "--hello world--", want: "hello-world"},
		{name: "collapsed runs", input: "a -- b", want: "a-b"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "single character", input: "A", want: "a"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Truncates verifies long titles are capped on a word boundary.
func TestGenerate_Truncates(t *testing.T) {
	long := strings.Repeat("contract ", 20)
	got := Generate(long)
	if len(got) > MaxLen {
		t.Errorf("len: got %d, want <= %d", len(got), MaxLen)
	}
	if strings.HasSuffix(got, "-") || strings.HasSuffix(got, "contr") {
		t.Errorf("truncation should end on a whole word: %q", got)
	}

	unbroken := strings.Repeat("x", 200)
	if got := Generate(unbroken); len(got) != MaxLen {
		t.Errorf("unbroken: got len %d, want %d", len(got), MaxLen)
	}
}

// TestGenerate_Idempotent verifies that a valid slug maps to itself.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "nda-2026", "a", "123"} {
		if got := Generate(s); got != s {
			t.Errorf("Generate(%q) = %q, want idempotent result", s, got)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("Offer Letter", "contract", ".docx"); got != "offer-letter.docx" {
		t.Errorf("got %q", got)
	}
	if got := Filename("???", "contract", ".html"); got != "contract.html" {
		t.Errorf("fallback: got %q", got)
	}
}
