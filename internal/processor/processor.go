// Package processor turns loaded samples into an analyzed run: per-sample
// features, overall metric results and the configured analyses.
package processor

import (
	"fmt"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/logging"
	"interpreteval/internal/metric"
)

var log = logging.New("processor")

// pairFunc extracts the ground truth or the prediction from one sample.
type pairFunc func(loader.Sample) (any, error)

// featureFunc computes a derived feature. The second return is false when
// the feature cannot be computed for this run (e.g. no training set).
type featureFunc func(loader.Sample, *TrainingStats) (any, bool)

// Processor evaluates one task: it declares the features of the analysis
// level, the default metrics and the default analyses.
type Processor struct {
	task     Task
	level    analysis.Level
	metrics  []metric.Config
	analyses []analysis.Analysis

	truth pairFunc
	pred  pairFunc

	// copied features are taken from the sample as-is when present;
	// derived features are computed.
	copied  []string
	derived map[string]featureFunc

	training *TrainingStats
}

// Task returns the task the processor evaluates.
func (p *Processor) Task() Task { return p.task }

// Level returns the analysis level with its feature declarations.
func (p *Processor) Level() analysis.Level { return p.level }

// MetricNames lists the default metrics in declaration order.
func (p *Processor) MetricNames() []string {
	names := make([]string, len(p.metrics))
	for i, c := range p.metrics {
		names[i] = c.MetricName()
	}
	return names
}

// SetTraining attaches training-set statistics so that features marked
// RequireTrainingSet can be computed.
func (p *Processor) SetTraining(tr *TrainingStats) { p.training = tr }

// Result is the outcome of processing one system output.
type Result struct {
	Level    string                   `json:"level"`
	N        int                      `json:"n_samples"`
	Overall  map[string]metric.Result `json:"overall"`
	Analyses []analysis.Result        `json:"-"`
	Cases    []analysis.Case          `json:"-"`
}

// Process runs the full evaluation over merged samples. alpha > 0 attaches
// bootstrap confidence intervals at that significance level.
func (p *Processor) Process(samples []loader.Sample, alpha float64) (*Result, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("process %s: no samples", p.task)
	}

	cases, err := p.buildCases(samples)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", p.task, err)
	}

	truths := make([]any, len(samples))
	preds := make([]any, len(samples))
	for i, s := range samples {
		if truths[i], err = p.truth(s); err != nil {
			return nil, fmt.Errorf("process %s: sample %d: %w", p.task, i, err)
		}
		if preds[i], err = p.pred(s); err != nil {
			return nil, fmt.Errorf("process %s: sample %d: %w", p.task, i, err)
		}
	}

	metrics := make(map[string]metric.Metric, len(p.metrics))
	stats := make(map[string]*metric.Stats, len(p.metrics))
	overall := make(map[string]metric.Result, len(p.metrics))
	for _, cfg := range p.metrics {
		m := cfg.ToMetric()
		st, err := m.CalcStats(truths, preds)
		if err != nil {
			return nil, fmt.Errorf("process %s: metric %s: %w", p.task, m.Name(), err)
		}
		res, err := m.FromStats(st, alpha)
		if err != nil {
			return nil, fmt.Errorf("process %s: metric %s: %w", p.task, m.Name(), err)
		}
		metrics[m.Name()] = m
		stats[m.Name()] = st
		overall[m.Name()] = res
	}

	var results []analysis.Result
	for _, a := range p.analyses {
		if skip, reason := p.skipAnalysis(a, cases); skip {
			log.Debug("skipping analysis", "task", p.task, "reason", reason)
			continue
		}
		r, err := a.Perform(cases, metrics, stats, alpha)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", p.task, err)
		}
		results = append(results, r)
	}

	return &Result{
		Level:    p.level.Name,
		N:        len(samples),
		Overall:  overall,
		Analyses: results,
		Cases:    cases,
	}, nil
}

// buildCases assembles per-sample feature maps: copied fields when present,
// then derived features for which the inputs are available.
func (p *Processor) buildCases(samples []loader.Sample) ([]analysis.Case, error) {
	cases := make([]analysis.Case, len(samples))
	for i, s := range samples {
		feats := make(map[string]any, len(p.copied)+len(p.derived))
		for _, name := range p.copied {
			if v, ok := s[name]; ok {
				feats[name] = v
			}
		}
		for name, fn := range p.derived {
			if ft, ok := p.level.Features[name]; ok && ft.RequireTrainingSet && p.training == nil {
				continue
			}
			if v, ok := fn(s, p.training); ok {
				feats[name] = v
			}
		}
		cases[i] = analysis.Case{SampleID: i, Features: feats}
	}
	return cases, nil
}

// skipAnalysis drops analyses whose feature is absent from this run, such
// as calibration without a confidence column or training-set features
// without a training set.
func (p *Processor) skipAnalysis(a analysis.Analysis, cases []analysis.Case) (bool, string) {
	var feats []string
	switch x := a.(type) {
	case analysis.BucketAnalysis:
		feats = []string{x.Feature}
	case analysis.CalibrationAnalysis:
		feats = []string{x.Feature}
	case analysis.ComboCountAnalysis:
		feats = x.Features
	default:
		return false, ""
	}
	for _, f := range feats {
		if _, ok := cases[0].Features[f]; !ok {
			return true, fmt.Sprintf("feature %q not present", f)
		}
	}
	return false, ""
}

// sampleString fetches a required string field.
func sampleString(s loader.Sample, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", fmt.Errorf("field %q missing", name)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", name, v)
	}
	return str, nil
}

// sampleFloat fetches a required numeric field.
func sampleFloat(s loader.Sample, name string) (float64, error) {
	v, ok := s[name]
	if !ok {
		return 0, fmt.Errorf("field %q missing", name)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("field %q: expected number, got %T", name, v)
}

// sampleStrings fetches a required string-slice field, accepting the
// []any form produced by JSON decoding.
func sampleStrings(s loader.Sample, name string) ([]string, error) {
	v, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("field %q missing", name)
	}
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("field %q: element %d is %T, not string", name, i, e)
			}
			out[i] = str
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %q: expected string list, got %T", name, v)
}

func stringPair(name string) pairFunc {
	return func(s loader.Sample) (any, error) { return sampleString(s, name) }
}

func floatPair(name string) pairFunc {
	return func(s loader.Sample) (any, error) { return sampleFloat(s, name) }
}

func stringsPair(name string) pairFunc {
	return func(s loader.Sample) (any, error) {
		v, err := sampleStrings(s, name)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
