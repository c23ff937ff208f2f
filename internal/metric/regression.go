package metric

import "math"

// RMSEConfig builds the root-mean-squared-error metric.
type RMSEConfig struct{}

func (RMSEConfig) MetricName() string { return "RMSE" }
func (RMSEConfig) ToMetric() Metric {
	return &regressionMetric{
		name:      "RMSE",
		sampleVal: func(t, p float64) float64 { return (t - p) * (t - p) },
		aggregate: func(mean float64) float64 { return math.Sqrt(mean) },
	}
}

// AbsoluteErrorConfig builds the mean-absolute-error metric.
type AbsoluteErrorConfig struct{}

func (AbsoluteErrorConfig) MetricName() string { return "AbsoluteError" }
func (AbsoluteErrorConfig) ToMetric() Metric {
	return &regressionMetric{
		name:      "AbsoluteError",
		sampleVal: func(t, p float64) float64 { return math.Abs(t - p) },
		aggregate: func(mean float64) float64 { return mean },
	}
}

// regressionMetric stores one error term per sample and aggregates by a
// transform of the mean (identity for MAE, sqrt for RMSE).
type regressionMetric struct {
	name      string
	sampleVal func(t, p float64) float64
	aggregate func(mean float64) float64
}

func (m *regressionMetric) Name() string { return m.name }

func (m *regressionMetric) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired(m.name, truth, pred); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(truth))
	for i := range truth {
		t, err := asFloat(truth[i], m.name+" truth")
		if err != nil {
			return nil, err
		}
		p, err := asFloat(pred[i], m.name+" prediction")
		if err != nil {
			return nil, err
		}
		rows[i] = []float64{m.sampleVal(t, p)}
	}
	return NewStats(rows), nil
}

func (m *regressionMetric) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	return finish(stats, alpha, func(s *Stats) float64 { return m.aggregate(s.Mean()[0]) }), nil
}
