package metric

import (
	"fmt"
	"sort"
)

// Averaging mode for F1-style metrics.
const (
	AverageMicro = "micro"
	AverageMacro = "macro"
)

// F1Config builds a multi-class F1 metric.
type F1Config struct {
	Average       string   // "micro" or "macro" (default micro)
	IgnoreClasses []string // labels excluded from scoring (e.g. "O")
}

func (c F1Config) MetricName() string {
	if c.Average == AverageMacro {
		return "MacroF1"
	}
	return "F1"
}

func (c F1Config) ToMetric() Metric {
	avg := c.Average
	if avg == "" {
		avg = AverageMicro
	}
	ignore := make(map[string]bool, len(c.IgnoreClasses))
	for _, cl := range c.IgnoreClasses {
		ignore[cl] = true
	}
	return &F1{name: c.MetricName(), average: avg, ignore: ignore}
}

// F1 scores multi-class classification. Per-sample statistics are, for each
// observed class, a (truth, predicted, matched) count triple; class columns
// are assigned during CalcStats and reused for every bucket aggregation.
type F1 struct {
	name    string
	average string
	ignore  map[string]bool

	classes []string
}

func (f *F1) Name() string { return f.name }

func (f *F1) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired(f.name, truth, pred); err != nil {
		return nil, err
	}

	t := make([]string, len(truth))
	p := make([]string, len(pred))
	seen := map[string]bool{}
	for i := range truth {
		var err error
		if t[i], err = asString(truth[i], f.name+" truth"); err != nil {
			return nil, err
		}
		if p[i], err = asString(pred[i], f.name+" prediction"); err != nil {
			return nil, err
		}
		if !f.ignore[t[i]] {
			seen[t[i]] = true
		}
		if !f.ignore[p[i]] {
			seen[p[i]] = true
		}
	}

	f.classes = make([]string, 0, len(seen))
	for c := range seen {
		f.classes = append(f.classes, c)
	}
	sort.Strings(f.classes)

	idx := make(map[string]int, len(f.classes))
	for i, c := range f.classes {
		idx[c] = i
	}

	rows := make([][]float64, len(t))
	for i := range t {
		row := make([]float64, 3*len(f.classes))
		if j, ok := idx[t[i]]; ok {
			row[3*j]++
		}
		if j, ok := idx[p[i]]; ok {
			row[3*j+1]++
		}
		if t[i] == p[i] {
			if j, ok := idx[t[i]]; ok {
				row[3*j+2]++
			}
		}
		rows[i] = row
	}
	return NewStats(rows), nil
}

func (f *F1) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	if len(f.classes) == 0 {
		return Result{}, fmt.Errorf("%s: FromStats called before CalcStats", f.name)
	}
	return finish(stats, alpha, f.score), nil
}

func (f *F1) score(s *Stats) float64 {
	sums := s.Sum()
	if f.average == AverageMacro {
		total := 0.0
		for j := range f.classes {
			total += f1Value(sums[3*j], sums[3*j+1], sums[3*j+2])
		}
		return total / float64(len(f.classes))
	}

	var nTrue, nPred, nMatch float64
	for j := range f.classes {
		nTrue += sums[3*j]
		nPred += sums[3*j+1]
		nMatch += sums[3*j+2]
	}
	return f1Value(nTrue, nPred, nMatch)
}

// f1Value computes F1 from truth/predicted/matched counts, with the usual
// zero conventions (no predictions and no truths score 0).
func f1Value(nTrue, nPred, nMatch float64) float64 {
	var precision, recall float64
	if nPred > 0 {
		precision = nMatch / nPred
	}
	if nTrue > 0 {
		recall = nMatch / nTrue
	}
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
