// Package metric implements evaluation metrics over per-sample sufficient
// statistics. A metric computes one stats row per example once; overall and
// per-bucket scores are then aggregated from (filtered) stats without
// touching the raw samples again.
package metric

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// bootstrapSamples is the number of resamples used for confidence intervals.
const bootstrapSamples = 1000

// bootstrapSeed keeps confidence intervals reproducible across runs.
const bootstrapSeed = 12345

// Stats holds per-sample sufficient statistics: one row per example.
type Stats struct {
	rows [][]float64
}

// NewStats wraps rows of per-sample statistics.
func NewStats(rows [][]float64) *Stats {
	return &Stats{rows: rows}
}

// Len returns the number of samples.
func (s *Stats) Len() int { return len(s.rows) }

// Row returns the statistics of sample i.
func (s *Stats) Row(i int) []float64 { return s.rows[i] }

// Filter returns a new Stats containing only the rows at the given indices.
// Indices out of range are an error; bucket membership must refer to the
// same sample ordering the stats were built from.
func (s *Stats) Filter(ids []int) (*Stats, error) {
	rows := make([][]float64, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(s.rows) {
			return nil, fmt.Errorf("stats filter: sample id %d out of range [0, %d)", id, len(s.rows))
		}
		rows[i] = s.rows[id]
	}
	return &Stats{rows: rows}, nil
}

// Sum returns the column-wise sum of all rows.
func (s *Stats) Sum() []float64 {
	if len(s.rows) == 0 {
		return nil
	}
	out := make([]float64, len(s.rows[0]))
	for _, row := range s.rows {
		for j, v := range row {
			out[j] += v
		}
	}
	return out
}

// Mean returns the column-wise mean of all rows.
func (s *Stats) Mean() []float64 {
	sum := s.Sum()
	for j := range sum {
		sum[j] /= float64(len(s.rows))
	}
	return sum
}

// Interval is a two-sided confidence interval at level 1-alpha.
type Interval struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Alpha float64 `json:"alpha"`
}

// Result is an aggregated metric value, optionally with a confidence
// interval and auxiliary scores (e.g. mean confidence for calibration).
type Result struct {
	Score float64            `json:"score"`
	CI    *Interval          `json:"confidence_interval,omitempty"`
	Aux   map[string]float64 `json:"aux,omitempty"`
}

// resultJSON mirrors Result with a nullable score so that undefined values
// (e.g. correlation of a single-sample bucket) survive serialization.
type resultJSON struct {
	Score *float64           `json:"score"`
	CI    *Interval          `json:"confidence_interval,omitempty"`
	Aux   map[string]float64 `json:"aux,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{CI: r.CI, Aux: r.Aux}
	if !math.IsNaN(r.Score) {
		out.Score = &r.Score
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Score = math.NaN()
	if in.Score != nil {
		r.Score = *in.Score
	}
	r.CI = in.CI
	r.Aux = in.Aux
	return nil
}

// Metric computes per-sample statistics and aggregates them into a Result.
type Metric interface {
	// Name returns the metric's display name (e.g. "Accuracy", "F1").
	Name() string
	// CalcStats computes one statistics row per (truth, prediction) pair.
	// The concrete element types are metric-specific.
	CalcStats(truth, pred []any) (*Stats, error)
	// FromStats aggregates statistics into a Result. When alpha > 0 a
	// bootstrap confidence interval at level 1-alpha is attached.
	FromStats(stats *Stats, alpha float64) (Result, error)
}

// Config constructs a Metric. Processors declare Configs; the analysis
// engine instantiates them per run.
type Config interface {
	MetricName() string
	ToMetric() Metric
}

// finish assembles a Result from an aggregation function, bootstrapping a
// confidence interval when requested.
func finish(stats *Stats, alpha float64, calc func(*Stats) float64) Result {
	res := Result{Score: calc(stats)}
	if alpha > 0 && stats.Len() > 1 {
		res.CI = bootstrapCI(stats, alpha, calc)
	}
	return res
}

// bootstrapCI estimates a percentile confidence interval by resampling rows
// with replacement and recomputing the score.
func bootstrapCI(s *Stats, alpha float64, calc func(*Stats) float64) *Interval {
	rng := rand.New(rand.NewSource(bootstrapSeed))
	n := s.Len()

	scores := make([]float64, 0, bootstrapSamples)
	rows := make([][]float64, n)
	for b := 0; b < bootstrapSamples; b++ {
		for i := range rows {
			rows[i] = s.rows[rng.Intn(n)]
		}
		v := calc(&Stats{rows: rows})
		if !math.IsNaN(v) {
			scores = append(scores, v)
		}
	}
	if len(scores) == 0 {
		return nil
	}
	sort.Float64s(scores)

	lo := scores[quantileIndex(len(scores), alpha/2)]
	hi := scores[quantileIndex(len(scores), 1-alpha/2)]
	return &Interval{Lo: lo, Hi: hi, Alpha: alpha}
}

func quantileIndex(n int, q float64) int {
	i := int(q * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// asString narrows a sample value to a label string.
func asString(v any, what string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string label, got %T", what, v)
	}
	return s, nil
}

// asFloat narrows a sample value to a float64.
func asFloat(v any, what string) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%s: expected numeric value, got %T", what, v)
}

func errStatsMismatch(n, m int) error {
	return fmt.Errorf("auxiliary stats length %d does not match primary stats length %d", m, n)
}

// checkPaired validates that truth and pred have equal, non-zero length.
func checkPaired(name string, truth, pred []any) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("%s: %d true values vs %d predictions", name, len(truth), len(pred))
	}
	if len(truth) == 0 {
		return fmt.Errorf("%s: no samples", name)
	}
	return nil
}
