package metric

import (
	"math"
	"testing"
)

func anyStrings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func evaluate(t *testing.T, cfg Config, truth, pred []any, alpha float64) Result {
	t.Helper()
	m := cfg.ToMetric()
	stats, err := m.CalcStats(truth, pred)
	if err != nil {
		t.Fatalf("CalcStats: %v", err)
	}
	res, err := m.FromStats(stats, alpha)
	if err != nil {
		t.Fatalf("FromStats: %v", err)
	}
	return res
}

func TestF1_Micro(t *testing.T) {
	truth := anyStrings([]string{"a", "b", "a", "b", "a", "a", "c", "c"})
	pred := anyStrings([]string{"a", "b", "a", "b", "b", "a", "c", "a"})

	res := evaluate(t, F1Config{Average: AverageMicro}, truth, pred, 0)
	if math.Abs(res.Score-0.75) > 1e-9 {
		t.Errorf("micro F1 = %v, want 0.75", res.Score)
	}
}

func TestF1_Macro(t *testing.T) {
	truth := anyStrings([]string{"a", "b", "a", "b", "a", "a", "c", "c"})
	pred := anyStrings([]string{"a", "b", "a", "b", "b", "a", "c", "a"})

	// Per-class F1: a=0.75, b=0.8, c=2/3.
	want := (0.75 + 0.8 + 2.0/3.0) / 3.0
	res := evaluate(t, F1Config{Average: AverageMacro}, truth, pred, 0)
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("macro F1 = %v, want %v", res.Score, want)
	}
}

func TestF1_LengthMismatch(t *testing.T) {
	m := F1Config{}.ToMetric()
	if _, err := m.CalcStats(anyStrings([]string{"a"}), anyStrings([]string{"a", "b"})); err == nil {
		t.Error("expected error on length mismatch")
	}
}

func TestSeqF1_Micro(t *testing.T) {
	truth := []any{
		[]string{"O", "O", "B-MISC", "I-MISC", "B-MISC", "O", "O"},
		[]string{"B-PER", "I-PER", "O"},
	}
	pred := []any{
		[]string{"O", "O", "B-MISC", "I-MISC", "B-MISC", "I-MISC", "O"},
		[]string{"B-PER", "I-PER", "O"},
	}

	res := evaluate(t, SeqF1Config{Average: AverageMicro}, truth, pred, 0)
	if math.Abs(res.Score-2.0/3.0) > 1e-9 {
		t.Errorf("micro SeqF1 = %v, want 2/3", res.Score)
	}
}

func TestSeqF1_Macro(t *testing.T) {
	truth := []any{
		[]string{"O", "O", "B-MISC", "I-MISC", "B-MISC", "O", "O"},
		[]string{"B-PER", "I-PER", "O"},
	}
	pred := []any{
		[]string{"O", "O", "B-MISC", "I-MISC", "B-MISC", "I-MISC", "O"},
		[]string{"B-PER", "I-PER", "O"},
	}

	res := evaluate(t, SeqF1Config{Average: AverageMacro}, truth, pred, 0)
	if math.Abs(res.Score-0.75) > 1e-9 {
		t.Errorf("macro SeqF1 = %v, want 0.75", res.Score)
	}
}

func TestBIOSpans(t *testing.T) {
	spans := bioSpans([]string{"B-PER", "I-PER", "O", "I-LOC", "B-LOC"})
	want := []span{
		{tag: "PER", start: 0, end: 1},
		{tag: "LOC", start: 3, end: 3},
		{tag: "LOC", start: 4, end: 4},
	}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d: %v", len(spans), len(want), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %v, want %v", i, spans[i], want[i])
		}
	}
}

func TestSeqF1_TagLengthMismatch(t *testing.T) {
	m := SeqF1Config{}.ToMetric()
	_, err := m.CalcStats(
		[]any{[]string{"O", "O"}},
		[]any{[]string{"O"}},
	)
	if err == nil {
		t.Error("expected error when tag sequences differ in length")
	}
}
