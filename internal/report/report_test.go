package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"interpreteval/internal/format"
	"interpreteval/internal/loader"
	"interpreteval/internal/processor"
)

func buildReport(t *testing.T, system string, predictions []string) *Report {
	t.Helper()
	dataset := []loader.Sample{
		{"text": "great film", "true_label": "positive"},
		{"text": "plodding and dull", "true_label": "negative"},
		{"text": "a fine effort", "true_label": "positive"},
		{"text": "simply bad", "true_label": "negative"},
	}
	output := make([]loader.Sample, len(predictions))
	for i, p := range predictions {
		output[i] = loader.Sample{"predicted_label": p}
	}
	samples, err := loader.Merge(dataset, output)
	if err != nil {
		t.Fatal(err)
	}

	sp, err := processor.Get("text-classification")
	if err != nil {
		t.Fatal(err)
	}
	res, err := sp.New().Process(samples, 0)
	if err != nil {
		t.Fatal(err)
	}
	r, err := New("text-classification", system, Dataset{Path: "movies.tsv"}, res)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestReport_JSONRoundTrip(t *testing.T) {
	r := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})

	path := filepath.Join(t.TempDir(), "report.json")
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r, loaded); diff != "" {
		t.Errorf("report changed across round trip (-saved +loaded):\n%s", diff)
	}
}

func TestReport_GenerateText(t *testing.T) {
	r := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})
	text := r.GenerateText()

	if !strings.Contains(text, "overall results of sysA on movies.tsv (4 samples)") {
		t.Errorf("missing overall header:\n%s", text)
	}
	if !strings.Contains(text, "Accuracy\t0.7500") {
		t.Errorf("missing accuracy line:\n%s", text)
	}
	if !strings.Contains(text, "the information of #true_label#") {
		t.Errorf("missing bucket block:\n%s", text)
	}
	if !strings.Contains(text, "feature combos for true_label, predicted_label") {
		t.Errorf("missing combo block:\n%s", text)
	}
}

func TestReport_RenderTables(t *testing.T) {
	r := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})

	ascii := r.RenderTables(format.ASCII)
	if !strings.Contains(ascii, "Accuracy") || !strings.Contains(ascii, "0.7500") {
		t.Errorf("ascii tables missing accuracy:\n%s", ascii)
	}

	md := r.Markdown()
	if !strings.Contains(md, "# Analysis report: sysA") {
		t.Errorf("markdown missing title:\n%s", md)
	}
	if !strings.Contains(md, "| Accuracy") {
		t.Errorf("markdown missing metric row:\n%s", md)
	}
}

func TestCompare(t *testing.T) {
	base := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})
	contrast := buildReport(t, "sysB", []string{"positive", "negative", "positive", "negative"})

	c, err := Compare(base, contrast)
	if err != nil {
		t.Fatal(err)
	}

	var acc *MetricDelta
	for i := range c.Overall {
		if c.Overall[i].Metric == "Accuracy" {
			acc = &c.Overall[i]
		}
	}
	if acc == nil {
		t.Fatal("missing Accuracy delta")
	}
	if acc.Base != 0.75 || acc.Contrast != 1.0 || acc.Delta != 0.25 {
		t.Errorf("accuracy delta = %+v, want 0.75 -> 1.00", acc)
	}
	if len(c.Buckets) == 0 {
		t.Error("expected per-bucket deltas")
	}

	out := c.RenderTables(format.ASCII)
	if !strings.Contains(out, "sysA vs sysB") || !strings.Contains(out, "+0.2500") {
		t.Errorf("comparison render missing delta:\n%s", out)
	}
}

func TestCompare_Mismatch(t *testing.T) {
	base := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})
	other := *base
	other.Task = "summarization"
	if _, err := Compare(base, &other); err == nil {
		t.Error("expected task mismatch error")
	}
}

func TestReport_ToSamples(t *testing.T) {
	r := buildReport(t, "sysA", []string{"positive", "negative", "negative", "negative"})
	samples := r.ToSamples()
	if len(samples) == 0 {
		t.Fatal("expected bucket samples")
	}
	s := samples[0]
	for _, key := range []string{"system_name", "feature_name", "bucket_name", "bucket_size", "metric_name", "score"} {
		if _, ok := s[key]; !ok {
			t.Errorf("sample missing %q: %v", key, s)
		}
	}
}
