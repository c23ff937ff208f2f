package metric

import (
	"math"
	"testing"
)

func TestNormalizeAnswer(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"The Beatles", "beatles"},
		{"a  quick  brown   fox!", "quick brown fox"},
		{"An Apple", "apple"},
		{"42.", "42"},
	} {
		if got := normalizeAnswer(tc.in); got != tc.want {
			t.Errorf("normalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExactMatchQA(t *testing.T) {
	truth := []any{
		[]string{"The Beatles", "Beatles"},
		[]string{"1964"},
	}
	pred := []any{"beatles!", "nineteen sixty-four"}

	res := evaluate(t, ExactMatchQAConfig{}, truth, pred, 0)
	if res.Score != 0.5 {
		t.Errorf("exact match = %v, want 0.5", res.Score)
	}
}

func TestTokenF1QA(t *testing.T) {
	truth := []any{[]string{"the quick brown fox"}}
	pred := []any{"quick fox"}

	// Overlap 2 tokens; precision 2/2, recall 2/3 → F1 = 0.8.
	res := evaluate(t, F1QAConfig{}, truth, pred, 0)
	if math.Abs(res.Score-0.8) > 1e-9 {
		t.Errorf("token F1 = %v, want 0.8", res.Score)
	}
}

func TestTokenF1QA_BestOverReferences(t *testing.T) {
	truth := []any{[]string{"blue", "quick fox"}}
	pred := []any{"quick fox"}

	res := evaluate(t, F1QAConfig{}, truth, pred, 0)
	if res.Score != 1.0 {
		t.Errorf("token F1 = %v, want 1.0 (best reference)", res.Score)
	}
}

func TestTokenF1QA_EmptyNormalized(t *testing.T) {
	// "the" normalizes to the empty string on both sides.
	truth := []any{[]string{"the"}}
	pred := []any{"a"}

	res := evaluate(t, F1QAConfig{}, truth, pred, 0)
	if res.Score != 1.0 {
		t.Errorf("token F1 = %v, want 1.0 for doubly-empty answers", res.Score)
	}
}
