package analysis

import (
	"fmt"
	"math"
	"strings"

	"interpreteval/internal/format"
	"interpreteval/internal/metric"
)

// CalibrationAnalysis measures how well model confidence matches accuracy:
// the confidence feature is histogrammed into fixed [0, 1] buckets and each
// bucket's accuracy is compared with its mean confidence. Expected and
// maximum calibration error follow Guo et al. 2017.
type CalibrationAnalysis struct {
	Desc        string
	Level       string
	Feature     string // confidence feature name
	NumBuckets  int    // default 10
	SampleLimit int
}

func (a CalibrationAnalysis) Description() string { return a.Desc }

func (a CalibrationAnalysis) Perform(cases []Case, metrics map[string]metric.Metric, stats map[string]*metric.Stats, alpha float64) (Result, error) {
	numBuckets := a.NumBuckets
	if numBuckets <= 0 {
		numBuckets = 10
	}
	limit := a.SampleLimit
	if limit == 0 {
		limit = DefaultSampleLimit
	}

	acc, ok := metrics["Accuracy"].(*metric.Accuracy)
	if !ok {
		return nil, fmt.Errorf("calibration analysis: metric Accuracy not found")
	}
	accStats, ok := stats["Accuracy"]
	if !ok {
		return nil, fmt.Errorf("calibration analysis: no stats for Accuracy")
	}

	pairs, err := featureValues(cases, a.Feature)
	if err != nil {
		return nil, fmt.Errorf("calibration analysis: %w", err)
	}
	if len(pairs) != accStats.Len() {
		return nil, fmt.Errorf("calibration analysis: %d confidence values vs %d accuracy stats", len(pairs), accStats.Len())
	}

	// Confidence as auxiliary per-sample stats, indexable by sample ID.
	confRows := make([][]float64, accStats.Len())
	for _, p := range pairs {
		if p.SampleID < 0 || p.SampleID >= len(confRows) {
			return nil, fmt.Errorf("calibration analysis: sample id %d out of range", p.SampleID)
		}
		confRows[p.SampleID] = []float64{p.Value}
	}
	confStats := metric.NewStats(confRows)

	buckets := FixedBuckets(pairs, UnitIntervals(numBuckets))

	perfs := make([]BucketPerformance, 0, len(buckets))
	for _, b := range buckets {
		bp := BucketPerformance{
			N:         len(b.SampleIDs),
			Interval:  b.Interval,
			SampleIDs: subsample(b.SampleIDs, limit),
			Results:   map[string]metric.Result{},
		}
		if len(b.SampleIDs) == 0 {
			bp.Results["Accuracy"] = metric.Result{}
			perfs = append(perfs, bp)
			continue
		}
		accSub, err := accStats.Filter(b.SampleIDs)
		if err != nil {
			return nil, fmt.Errorf("calibration analysis: %w", err)
		}
		confSub, err := confStats.Filter(b.SampleIDs)
		if err != nil {
			return nil, fmt.Errorf("calibration analysis: %w", err)
		}
		res, err := acc.FromStatsWithConfidence(accSub, confSub, alpha)
		if err != nil {
			return nil, fmt.Errorf("calibration analysis: %w", err)
		}
		bp.Results["Accuracy"] = res
		perfs = append(perfs, bp)
	}

	ece, mce := calibrationErrors(perfs)
	return &CalibrationAnalysisResult{
		Name:    a.Feature,
		Level:   a.Level,
		Buckets: perfs,
		ECE:     ece,
		MCE:     mce,
	}, nil
}

// calibrationErrors computes expected (sample-weighted) and maximum
// |accuracy - confidence| over the non-empty buckets.
func calibrationErrors(perfs []BucketPerformance) (ece, mce float64) {
	totalErr, total := 0.0, 0
	for _, bp := range perfs {
		if bp.N == 0 {
			continue
		}
		res := bp.Results["Accuracy"]
		gap := math.Abs(res.Score - res.Aux["confidence"])
		totalErr += float64(bp.N) * gap
		total += bp.N
		if gap > mce {
			mce = gap
		}
	}
	if total > 0 {
		ece = totalErr / float64(total)
	}
	return ece, mce
}

// CalibrationAnalysisResult is the outcome of a CalibrationAnalysis.
type CalibrationAnalysisResult struct {
	Name    string              `json:"name"`
	Level   string              `json:"level"`
	Buckets []BucketPerformance `json:"bucket_performances"`
	ECE     float64             `json:"expected_calibration_error"`
	MCE     float64             `json:"maximum_calibration_error"`
}

func (r *CalibrationAnalysisResult) AnalysisName() string { return r.Name }
func (r *CalibrationAnalysisResult) LevelName() string    { return r.Level }

func (r *CalibrationAnalysisResult) GenerateText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "the information of #%s#\n", r.Name)
	b.WriteString("bucket_name\tAccuracy\tconfidence\t#samples\n")
	for _, bp := range r.Buckets {
		res := bp.Results["Accuracy"]
		fmt.Fprintf(&b, "%s\t%s\t%s\t%d\n",
			bp.label(), format.FmtScore(res.Score), format.FmtScore(res.Aux["confidence"]), bp.N)
	}
	fmt.Fprintf(&b, "expected_calibration_error\t%s\n", format.FmtScore(r.ECE))
	fmt.Fprintf(&b, "maximum_calibration_error\t%s\n\n", format.FmtScore(r.MCE))
	return b.String()
}
