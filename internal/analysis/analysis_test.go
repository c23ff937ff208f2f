package analysis

import (
	"math"
	"strings"
	"testing"

	"interpreteval/internal/metric"
)

// buildRun prepares cases and accuracy stats for a small labeled run.
func buildRun(t *testing.T, truth, pred []string, features []map[string]any) ([]Case, map[string]metric.Metric, map[string]*metric.Stats) {
	t.Helper()

	acc := metric.AccuracyConfig{}.ToMetric()
	anyTruth := make([]any, len(truth))
	anyPred := make([]any, len(pred))
	for i := range truth {
		anyTruth[i] = truth[i]
		anyPred[i] = pred[i]
	}
	stats, err := acc.CalcStats(anyTruth, anyPred)
	if err != nil {
		t.Fatal(err)
	}

	cases := make([]Case, len(truth))
	for i := range truth {
		cases[i] = Case{SampleID: i, Features: features[i]}
	}
	return cases, map[string]metric.Metric{"Accuracy": acc}, map[string]*metric.Stats{"Accuracy": stats}
}

func TestBucketAnalysis_Discrete(t *testing.T) {
	truth := []string{"pos", "pos", "neg", "neg"}
	pred := []string{"pos", "neg", "neg", "neg"}
	features := []map[string]any{
		{"true_label": "pos"}, {"true_label": "pos"},
		{"true_label": "neg"}, {"true_label": "neg"},
	}
	cases, metrics, stats := buildRun(t, truth, pred, features)

	res, err := BucketAnalysis{
		Level: "example", Feature: "true_label", Method: MethodDiscrete, NumBuckets: 15,
	}.Perform(cases, metrics, stats, 0)
	if err != nil {
		t.Fatal(err)
	}

	bar := res.(*BucketAnalysisResult)
	if len(bar.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(bar.Buckets))
	}
	byName := map[string]BucketPerformance{}
	for _, bp := range bar.Buckets {
		byName[bp.Name] = bp
	}
	if got := byName["pos"].Results["Accuracy"].Score; got != 0.5 {
		t.Errorf("pos accuracy = %v, want 0.5", got)
	}
	if got := byName["neg"].Results["Accuracy"].Score; got != 1.0 {
		t.Errorf("neg accuracy = %v, want 1.0", got)
	}
}

func TestBucketAnalysis_Continuous(t *testing.T) {
	truth := []string{"a", "a", "a", "a"}
	pred := []string{"a", "a", "b", "b"}
	features := []map[string]any{
		{"text_length": 1.0}, {"text_length": 2.0},
		{"text_length": 10.0}, {"text_length": 11.0},
	}
	cases, metrics, stats := buildRun(t, truth, pred, features)

	res, err := BucketAnalysis{
		Level: "example", Feature: "text_length", NumBuckets: 2,
	}.Perform(cases, metrics, stats, 0)
	if err != nil {
		t.Fatal(err)
	}

	bar := res.(*BucketAnalysisResult)
	if len(bar.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(bar.Buckets))
	}
	// Short texts were all correct, long texts all wrong.
	if got := bar.Buckets[0].Results["Accuracy"].Score; got != 1.0 {
		t.Errorf("short bucket accuracy = %v, want 1.0", got)
	}
	if got := bar.Buckets[1].Results["Accuracy"].Score; got != 0.0 {
		t.Errorf("long bucket accuracy = %v, want 0.0", got)
	}
}

func TestBucketAnalysis_MissingFeature(t *testing.T) {
	cases, metrics, stats := buildRun(t,
		[]string{"a"}, []string{"a"},
		[]map[string]any{{"x": 1.0}})

	_, err := BucketAnalysis{Feature: "missing"}.Perform(cases, metrics, stats, 0)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected missing-feature error, got %v", err)
	}
}

func TestComboCountAnalysis_ConfusionMatrix(t *testing.T) {
	features := []map[string]any{
		{"true_label": "pos", "predicted_label": "pos"},
		{"true_label": "pos", "predicted_label": "neg"},
		{"true_label": "pos", "predicted_label": "pos"},
		{"true_label": "neg", "predicted_label": "neg"},
	}
	cases := make([]Case, len(features))
	for i, f := range features {
		cases[i] = Case{SampleID: i, Features: f}
	}

	res, err := ComboCountAnalysis{
		Level: "example", Features: []string{"true_label", "predicted_label"},
	}.Perform(cases, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}

	car := res.(*ComboCountAnalysisResult)
	if len(car.Occurrences) != 3 {
		t.Fatalf("got %d combos, want 3", len(car.Occurrences))
	}
	// Sorted by value: (neg,neg), (pos,neg), (pos,pos).
	if car.Occurrences[2].Count != 2 {
		t.Errorf("pos/pos count = %d, want 2", car.Occurrences[2].Count)
	}

	text := car.GenerateText()
	if !strings.Contains(text, "true_label\tpredicted_label\t#") {
		t.Errorf("text header missing:\n%s", text)
	}
}

func TestCalibrationAnalysis(t *testing.T) {
	// Two confident-correct, one confident-wrong, one unconfident-correct.
	truth := []string{"a", "a", "a", "a"}
	pred := []string{"a", "a", "b", "a"}
	features := []map[string]any{
		{"confidence": 0.95}, {"confidence": 0.85},
		{"confidence": 0.9}, {"confidence": 0.15},
	}
	cases, metrics, stats := buildRun(t, truth, pred, features)

	res, err := CalibrationAnalysis{
		Level: "example", Feature: "confidence", NumBuckets: 10,
	}.Perform(cases, metrics, stats, 0)
	if err != nil {
		t.Fatal(err)
	}

	car := res.(*CalibrationAnalysisResult)
	if len(car.Buckets) != 10 {
		t.Fatalf("got %d buckets, want 10", len(car.Buckets))
	}

	// Bucket [0.1, 0.2): accuracy 1, confidence 0.15 → gap 0.85.
	// Bucket [0.8, 0.9): accuracy 1, confidence 0.85 → gap 0.15.
	// Bucket [0.9, 1.0]: accuracy 0.5, confidence 0.925 → gap 0.425.
	wantECE := (1*0.85 + 1*0.15 + 2*0.425) / 4
	if math.Abs(car.ECE-wantECE) > 1e-9 {
		t.Errorf("ECE = %v, want %v", car.ECE, wantECE)
	}
	if math.Abs(car.MCE-0.85) > 1e-9 {
		t.Errorf("MCE = %v, want 0.85", car.MCE)
	}

	text := car.GenerateText()
	if !strings.Contains(text, "expected_calibration_error") {
		t.Errorf("text missing ECE line:\n%s", text)
	}
}

func TestSubsample_CapsAndDeterministic(t *testing.T) {
	ids := make([]int, 200)
	for i := range ids {
		ids[i] = i
	}
	a := subsample(ids, 50)
	b := subsample(ids, 50)
	if len(a) != 50 {
		t.Fatalf("got %d ids, want 50", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("subsample is not deterministic")
		}
	}

	small := subsample([]int{1, 2, 3}, 50)
	if len(small) != 3 {
		t.Errorf("small inputs should pass through, got %v", small)
	}
}

func TestBucketAnalysis_EmptyFixedBucketIsUndefined(t *testing.T) {
	truth := []string{"pos", "neg"}
	pred := []string{"pos", "neg"}
	features := []map[string]any{
		{"length": 1.0}, {"length": 2.0},
	}
	cases, metrics, stats := buildRun(t, truth, pred, features)

	res, err := BucketAnalysis{
		Level: "example", Feature: "length", Method: MethodFixed,
		FixedIntervals: []Interval{{Lo: 0, Hi: 2}, {Lo: 5, Hi: 10}},
	}.Perform(cases, metrics, stats, 0)
	if err != nil {
		t.Fatal(err)
	}

	bar := res.(*BucketAnalysisResult)
	if len(bar.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(bar.Buckets))
	}
	empty := bar.Buckets[1]
	if empty.N != 0 {
		t.Fatalf("second bucket has %d samples, want 0", empty.N)
	}
	if got := empty.Results["Accuracy"].Score; !math.IsNaN(got) {
		t.Errorf("empty bucket score = %v, want NaN", got)
	}
	if rendered := bar.GenerateText(); !strings.Contains(rendered, "\t-\t0") {
		t.Errorf("empty bucket should render as -, got:\n%s", rendered)
	}
}
