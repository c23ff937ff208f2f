package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"interpreteval/internal/format"
	"interpreteval/internal/metric"
)

// DefaultSampleLimit caps how many sample IDs are kept per bucket in the
// serialized report.
const DefaultSampleLimit = 50

// subsampleSeed keeps the retained sample IDs stable across runs.
const subsampleSeed = 94113

// Result is the outcome of one analysis.
type Result interface {
	// AnalysisName identifies the analysis (usually the feature analyzed).
	AnalysisName() string
	// LevelName is the analysis level the result belongs to (e.g. "example").
	LevelName() string
	// GenerateText renders the result as the report's plain-text block.
	GenerateText() string
}

// Analysis inspects cases and their metric statistics in some way.
type Analysis interface {
	// Description is a human-readable summary of what is analyzed.
	Description() string
	// Perform runs the analysis. stats maps metric name to the full-run
	// sample statistics; buckets re-evaluate by filtering them.
	Perform(cases []Case, metrics map[string]metric.Metric, stats map[string]*metric.Stats, alpha float64) (Result, error)
}

// BucketPerformance holds the metric results of a single bucket.
type BucketPerformance struct {
	N         int                      `json:"n_samples"`
	Interval  *Interval                `json:"bucket_interval,omitempty"`
	Name      string                   `json:"bucket_name,omitempty"`
	SampleIDs []int                    `json:"bucket_samples"`
	Results   map[string]metric.Result `json:"results"`
}

// label renders the bucket identity for text output.
func (bp *BucketPerformance) label() string {
	if bp.Interval != nil {
		return format.FmtInterval(bp.Interval.Lo, bp.Interval.Hi)
	}
	return bp.Name
}

// subsample keeps at most limit sample IDs, chosen deterministically.
func subsample(ids []int, limit int) []int {
	if limit <= 0 || len(ids) <= limit {
		return ids
	}
	rng := rand.New(rand.NewSource(subsampleSeed))
	picked := rng.Perm(len(ids))[:limit]
	sort.Ints(picked)
	out := make([]int, limit)
	for i, p := range picked {
		out[i] = ids[p]
	}
	return out
}

// featureValues extracts a numeric feature from every case.
func featureValues(cases []Case, feature string) ([]FeaturePair, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases to analyze")
	}
	if _, ok := cases[0].Features[feature]; !ok {
		return nil, fmt.Errorf("feature %q not found", feature)
	}
	pairs := make([]FeaturePair, len(cases))
	for i, c := range cases {
		v, err := toFloat(c.Features[feature])
		if err != nil {
			return nil, fmt.Errorf("feature %q of sample %d: %w", feature, c.SampleID, err)
		}
		pairs[i] = FeaturePair{SampleID: c.SampleID, Value: v}
	}
	return pairs, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("expected numeric value, got %T", v)
}

func toLabel(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// --- Bucket analysis ---

// Bucketing method names accepted by BucketAnalysis.
const (
	MethodContinuous = "continuous"
	MethodDiscrete   = "discrete"
	MethodFixed      = "fixed"
)

// BucketAnalysis buckets cases by one feature and re-evaluates every metric
// per bucket.
type BucketAnalysis struct {
	Desc           string
	Level          string
	Feature        string
	Method         string // continuous (default), discrete, or fixed
	NumBuckets     int    // default 4
	FixedIntervals []Interval
	SampleLimit    int // default DefaultSampleLimit
}

func (a BucketAnalysis) Description() string { return a.Desc }

func (a BucketAnalysis) Perform(cases []Case, metrics map[string]metric.Metric, stats map[string]*metric.Stats, alpha float64) (Result, error) {
	numBuckets := a.NumBuckets
	if numBuckets <= 0 {
		numBuckets = 4
	}
	limit := a.SampleLimit
	if limit == 0 {
		limit = DefaultSampleLimit
	}

	var buckets []CaseCollection
	switch a.Method {
	case MethodDiscrete:
		if len(cases) == 0 {
			return nil, fmt.Errorf("bucket analysis: no cases to analyze")
		}
		if _, ok := cases[0].Features[a.Feature]; !ok {
			return nil, fmt.Errorf("bucket analysis: feature %q not found", a.Feature)
		}
		pairs := make([]LabelPair, len(cases))
		for i, c := range cases {
			pairs[i] = LabelPair{SampleID: c.SampleID, Value: toLabel(c.Features[a.Feature])}
		}
		buckets = DiscreteBuckets(pairs, numBuckets, 0)
	case MethodFixed:
		pairs, err := featureValues(cases, a.Feature)
		if err != nil {
			return nil, fmt.Errorf("bucket analysis: %w", err)
		}
		if len(a.FixedIntervals) == 0 {
			return nil, fmt.Errorf("bucket analysis: fixed method requires intervals")
		}
		buckets = FixedBuckets(pairs, a.FixedIntervals)
	case "", MethodContinuous:
		pairs, err := featureValues(cases, a.Feature)
		if err != nil {
			return nil, fmt.Errorf("bucket analysis: %w", err)
		}
		buckets = ContinuousBuckets(pairs, numBuckets)
	default:
		return nil, fmt.Errorf("bucket analysis: unknown method %q", a.Method)
	}

	perfs := make([]BucketPerformance, 0, len(buckets))
	for _, b := range buckets {
		bp := BucketPerformance{
			N:         len(b.SampleIDs),
			Interval:  b.Interval,
			Name:      b.Name,
			SampleIDs: subsample(b.SampleIDs, limit),
			Results:   map[string]metric.Result{},
		}
		for name, m := range metrics {
			// A user-defined interval may contain no samples; its score is
			// undefined, not zero, so it serializes as null and renders
			// as "-".
			if len(b.SampleIDs) == 0 {
				bp.Results[name] = metric.Result{Score: math.NaN()}
				continue
			}
			st, ok := stats[name]
			if !ok {
				return nil, fmt.Errorf("bucket analysis: no stats for metric %q", name)
			}
			sub, err := st.Filter(b.SampleIDs)
			if err != nil {
				return nil, fmt.Errorf("bucket analysis: %w", err)
			}
			res, err := m.FromStats(sub, alpha)
			if err != nil {
				return nil, fmt.Errorf("bucket analysis: evaluate %s: %w", name, err)
			}
			bp.Results[name] = res
		}
		perfs = append(perfs, bp)
	}

	return &BucketAnalysisResult{Name: a.Feature, Level: a.Level, Buckets: perfs}, nil
}

// BucketAnalysisResult is the outcome of a BucketAnalysis.
type BucketAnalysisResult struct {
	Name    string              `json:"name"`
	Level   string              `json:"level"`
	Buckets []BucketPerformance `json:"bucket_performances"`
}

func (r *BucketAnalysisResult) AnalysisName() string { return r.Name }
func (r *BucketAnalysisResult) LevelName() string    { return r.Level }

func (r *BucketAnalysisResult) GenerateText() string {
	var b strings.Builder

	metricNames := sortedMetricNames(r.Buckets)
	for _, mn := range metricNames {
		fmt.Fprintf(&b, "the information of #%s#\n", r.Name)
		fmt.Fprintf(&b, "bucket_name\t%s\t#samples\n", mn)
		for _, bp := range r.Buckets {
			fmt.Fprintf(&b, "%s\t%s\t%d\n", bp.label(), format.FmtScore(bp.Results[mn].Score), bp.N)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedMetricNames(perfs []BucketPerformance) []string {
	if len(perfs) == 0 {
		return nil
	}
	names := make([]string, 0, len(perfs[0].Results))
	for name := range perfs[0].Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
