package metric

import (
	"fmt"
	"strings"
	"unicode"
)

// ExactMatchQAConfig builds the extractive-QA exact match metric.
type ExactMatchQAConfig struct{}

func (ExactMatchQAConfig) MetricName() string { return "ExactMatch" }
func (ExactMatchQAConfig) ToMetric() Metric {
	return &qaMetric{name: "ExactMatch", score: exactMatchScore}
}

// F1QAConfig builds the extractive-QA token-overlap F1 metric.
type F1QAConfig struct{}

func (F1QAConfig) MetricName() string { return "F1" }
func (F1QAConfig) ToMetric() Metric {
	return &qaMetric{name: "F1", score: tokenF1Score}
}

// qaMetric scores a predicted answer string against one or more reference
// answers, taking the best score over references (SQuAD convention). The
// per-sample statistic is the score itself, so aggregation is a mean.
type qaMetric struct {
	name  string
	score func(ref, pred string) float64
}

func (m *qaMetric) Name() string { return m.name }

func (m *qaMetric) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired(m.name, truth, pred); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(truth))
	for i := range truth {
		refs, err := asAnswerList(truth[i], m.name+" truth")
		if err != nil {
			return nil, err
		}
		p, err := asString(pred[i], m.name+" prediction")
		if err != nil {
			return nil, err
		}
		best := 0.0
		for _, ref := range refs {
			if v := m.score(ref, p); v > best {
				best = v
			}
		}
		rows[i] = []float64{best}
	}
	return NewStats(rows), nil
}

func (m *qaMetric) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	return finish(stats, alpha, func(s *Stats) float64 { return s.Mean()[0] }), nil
}

func exactMatchScore(ref, pred string) float64 {
	if normalizeAnswer(ref) == normalizeAnswer(pred) {
		return 1
	}
	return 0
}

func tokenF1Score(ref, pred string) float64 {
	refToks := strings.Fields(normalizeAnswer(ref))
	predToks := strings.Fields(normalizeAnswer(pred))

	if len(refToks) == 0 || len(predToks) == 0 {
		// Both empty counts as a match; otherwise no overlap is possible.
		if len(refToks) == len(predToks) {
			return 1
		}
		return 0
	}

	counts := map[string]int{}
	for _, tok := range refToks {
		counts[tok]++
	}
	common := 0
	for _, tok := range predToks {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}
	if common == 0 {
		return 0
	}
	precision := float64(common) / float64(len(predToks))
	recall := float64(common) / float64(len(refToks))
	return 2 * precision * recall / (precision + recall)
}

// normalizeAnswer lowercases, strips punctuation and English articles, and
// collapses whitespace, per the SQuAD evaluation script.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	var kept []string
	for _, tok := range strings.Fields(b.String()) {
		if tok == "a" || tok == "an" || tok == "the" {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func asAnswerList(v any, what string) ([]string, error) {
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s: answer %d is %T, want string", what, i, e)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected answer string or list, got %T", what, v)
}
