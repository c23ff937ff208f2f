package metric

// AccuracyConfig builds the Accuracy metric.
type AccuracyConfig struct{}

func (AccuracyConfig) MetricName() string { return "Accuracy" }
func (AccuracyConfig) ToMetric() Metric   { return &Accuracy{} }

// Accuracy is the fraction of exact label matches. Its per-sample statistic
// is a single 0/1 column, so bucket scores are plain means.
type Accuracy struct{}

func (*Accuracy) Name() string { return "Accuracy" }

func (*Accuracy) CalcStats(truth, pred []any) (*Stats, error) {
	if err := checkPaired("accuracy", truth, pred); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(truth))
	for i := range truth {
		t, err := asString(truth[i], "accuracy truth")
		if err != nil {
			return nil, err
		}
		p, err := asString(pred[i], "accuracy prediction")
		if err != nil {
			return nil, err
		}
		v := 0.0
		if t == p {
			v = 1.0
		}
		rows[i] = []float64{v}
	}
	return NewStats(rows), nil
}

func (*Accuracy) FromStats(stats *Stats, alpha float64) (Result, error) {
	if stats.Len() == 0 {
		return Result{}, nil
	}
	return finish(stats, alpha, func(s *Stats) float64 { return s.Mean()[0] }), nil
}

// FromStatsWithConfidence aggregates accuracy and attaches the mean of the
// auxiliary confidence stats. Used by calibration analysis, which needs
// per-bucket accuracy and average confidence side by side.
func (a *Accuracy) FromStatsWithConfidence(stats, conf *Stats, alpha float64) (Result, error) {
	if conf.Len() != stats.Len() {
		return Result{}, errStatsMismatch(stats.Len(), conf.Len())
	}
	res, err := a.FromStats(stats, alpha)
	if err != nil {
		return Result{}, err
	}
	if conf.Len() > 0 {
		res.Aux = map[string]float64{"confidence": conf.Mean()[0]}
	}
	return res, nil
}
