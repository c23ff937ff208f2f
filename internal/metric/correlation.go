package metric

import (
	"math"
	"sort"
)

// PearsonConfig builds the Pearson correlation metric, used for
// segment-level meta-evaluation of MT metric scores against human judgments.
type PearsonConfig struct{}

func (PearsonConfig) MetricName() string { return "Pearson" }
func (PearsonConfig) ToMetric() Metric {
	return &correlationMetric{name: "Pearson", corr: pearson}
}

// SpearmanConfig builds the Spearman rank correlation metric.
type SpearmanConfig struct{}

func (SpearmanConfig) MetricName() string { return "Spearman" }
func (SpearmanConfig) ToMetric() Metric {
	return &correlationMetric{name: "Spearman", corr: spearman}
}

// correlationMetric keeps the raw (human, system) score pair per sample;
// correlation is recomputed from the pairs for every bucket, which also
// makes bootstrap resampling exact.
type correlationMetric struct {
	name string
	corr func(x, y []float64) float64
}

func (m *correlationMetric) Name() string { return m.name }

func (m *correlationMetric) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired(m.name, truth, pred); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(truth))
	for i := range truth {
		t, err := asFloat(truth[i], m.name+" human score")
		if err != nil {
			return nil, err
		}
		p, err := asFloat(pred[i], m.name+" system score")
		if err != nil {
			return nil, err
		}
		rows[i] = []float64{t, p}
	}
	return NewStats(rows), nil
}

func (m *correlationMetric) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	return finish(stats, alpha, func(s *Stats) float64 {
		x := make([]float64, s.Len())
		y := make([]float64, s.Len())
		for i := 0; i < s.Len(); i++ {
			row := s.Row(i)
			x[i], y[i] = row[0], row[1]
		}
		return m.corr(x, y)
	}), nil
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return math.NaN()
	}
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

func spearman(x, y []float64) float64 {
	return pearson(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks with ties receiving their average rank.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		// Average rank over the tie group [i, j].
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
