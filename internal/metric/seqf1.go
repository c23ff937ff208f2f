package metric

import (
	"fmt"
	"sort"
	"strings"
)

// SeqF1Config builds a span-level F1 metric over BIO tag sequences.
type SeqF1Config struct {
	Average string // "micro" or "macro" (default micro)
}

func (c SeqF1Config) MetricName() string {
	if c.Average == AverageMacro {
		return "MacroSeqF1"
	}
	return "SeqF1"
}

func (c SeqF1Config) ToMetric() Metric {
	avg := c.Average
	if avg == "" {
		avg = AverageMicro
	}
	return &SeqF1{name: c.MetricName(), average: avg}
}

// SeqF1 scores sequence labeling at the span level: a predicted span counts
// only when its type and exact boundaries match a gold span. Each sample is
// one tagged sentence ([]string in BIO schema).
type SeqF1 struct {
	name    string
	average string

	tags []string
}

func (f *SeqF1) Name() string { return f.name }

func (f *SeqF1) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired(f.name, truth, pred); err != nil {
		return nil, err
	}

	trueSpans := make([][]span, len(truth))
	predSpans := make([][]span, len(pred))
	seen := map[string]bool{}
	for i := range truth {
		ts, err := asTagSeq(truth[i], f.name+" truth")
		if err != nil {
			return nil, err
		}
		ps, err := asTagSeq(pred[i], f.name+" prediction")
		if err != nil {
			return nil, err
		}
		if len(ts) != len(ps) {
			return nil, fmt.Errorf("%s: sample %d has %d true tags vs %d predicted", f.name, i, len(ts), len(ps))
		}
		trueSpans[i] = bioSpans(ts)
		predSpans[i] = bioSpans(ps)
		for _, sp := range trueSpans[i] {
			seen[sp.tag] = true
		}
		for _, sp := range predSpans[i] {
			seen[sp.tag] = true
		}
	}

	f.tags = make([]string, 0, len(seen))
	for tag := range seen {
		f.tags = append(f.tags, tag)
	}
	sort.Strings(f.tags)

	idx := make(map[string]int, len(f.tags))
	for i, tag := range f.tags {
		idx[tag] = i
	}

	rows := make([][]float64, len(truth))
	for i := range truth {
		row := make([]float64, 3*len(f.tags))
		gold := map[span]bool{}
		for _, sp := range trueSpans[i] {
			gold[sp] = true
			row[3*idx[sp.tag]]++
		}
		for _, sp := range predSpans[i] {
			row[3*idx[sp.tag]+1]++
			if gold[sp] {
				row[3*idx[sp.tag]+2]++
			}
		}
		rows[i] = row
	}
	return NewStats(rows), nil
}

func (f *SeqF1) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	if len(f.tags) == 0 {
		return Result{}, fmt.Errorf("%s: FromStats called before CalcStats", f.name)
	}
	return finish(stats, alpha, f.score), nil
}

func (f *SeqF1) score(s *Stats) float64 {
	sums := s.Sum()
	if f.average == AverageMacro {
		total := 0.0
		for j := range f.tags {
			total += f1Value(sums[3*j], sums[3*j+1], sums[3*j+2])
		}
		return total / float64(len(f.tags))
	}
	var nTrue, nPred, nMatch float64
	for j := range f.tags {
		nTrue += sums[3*j]
		nPred += sums[3*j+1]
		nMatch += sums[3*j+2]
	}
	return f1Value(nTrue, nPred, nMatch)
}

// span is an entity occurrence: a tag with inclusive token boundaries.
type span struct {
	tag        string
	start, end int
}

// bioSpans extracts entity spans from a BIO tag sequence. An I- tag whose
// type differs from the open span starts a new span, matching conlleval.
func bioSpans(tags []string) []span {
	var spans []span
	open := -1
	openTag := ""

	flush := func(end int) {
		if open >= 0 {
			spans = append(spans, span{tag: openTag, start: open, end: end})
			open = -1
			openTag = ""
		}
	}

	for i, tag := range tags {
		switch {
		case strings.HasPrefix(tag, "B-"):
			flush(i - 1)
			open = i
			openTag = tag[2:]
		case strings.HasPrefix(tag, "I-"):
			if open < 0 || openTag != tag[2:] {
				flush(i - 1)
				open = i
				openTag = tag[2:]
			}
		default:
			flush(i - 1)
		}
	}
	flush(len(tags) - 1)
	return spans
}

func asTagSeq(v any, what string) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s: tag %d is %T, want string", what, i, e)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected tag sequence, got %T", what, v)
}
