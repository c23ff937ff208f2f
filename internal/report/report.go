// Package report serializes and renders analysis results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"interpreteval/internal/analysis"
	"interpreteval/internal/metric"
	"interpreteval/internal/processor"
)

// Dataset identifies what a system was evaluated on: either a named hub
// dataset or a custom local file.
type Dataset struct {
	Name       string `json:"name,omitempty"`
	SubDataset string `json:"sub_dataset,omitempty"`
	Path       string `json:"path,omitempty"`
}

func (d Dataset) String() string {
	switch {
	case d.Name != "" && d.SubDataset != "":
		return d.Name + "/" + d.SubDataset
	case d.Name != "":
		return d.Name
	default:
		return d.Path
	}
}

// Report is the full outcome of analyzing one system output.
type Report struct {
	Task       string                   `json:"task"`
	SystemName string                   `json:"system_name"`
	Dataset    Dataset                  `json:"dataset"`
	CreatedAt  time.Time                `json:"created_at"`
	Level      string                   `json:"level"`
	N          int                      `json:"n_samples"`
	Overall    map[string]metric.Result `json:"overall"`
	Analyses   []AnalysisResult         `json:"analyses"`
}

// AnalysisResult wraps one analysis outcome with a type tag so reports
// survive a JSON round trip.
type AnalysisResult struct {
	Type        string                              `json:"type"`
	Bucket      *analysis.BucketAnalysisResult      `json:"bucket,omitempty"`
	Combo       *analysis.ComboCountAnalysisResult  `json:"combo,omitempty"`
	Calibration *analysis.CalibrationAnalysisResult `json:"calibration,omitempty"`
}

// Result unwraps the tagged analysis outcome.
func (ar AnalysisResult) Result() (analysis.Result, error) {
	switch ar.Type {
	case "bucket":
		if ar.Bucket != nil {
			return ar.Bucket, nil
		}
	case "combo":
		if ar.Combo != nil {
			return ar.Combo, nil
		}
	case "calibration":
		if ar.Calibration != nil {
			return ar.Calibration, nil
		}
	}
	return nil, fmt.Errorf("malformed analysis result of type %q", ar.Type)
}

func wrap(r analysis.Result) (AnalysisResult, error) {
	switch x := r.(type) {
	case *analysis.BucketAnalysisResult:
		return AnalysisResult{Type: "bucket", Bucket: x}, nil
	case *analysis.ComboCountAnalysisResult:
		return AnalysisResult{Type: "combo", Combo: x}, nil
	case *analysis.CalibrationAnalysisResult:
		return AnalysisResult{Type: "calibration", Calibration: x}, nil
	}
	return AnalysisResult{}, fmt.Errorf("unknown analysis result type %T", r)
}

// New assembles a report from a processed run.
func New(task, systemName string, dataset Dataset, res *processor.Result) (*Report, error) {
	analyses := make([]AnalysisResult, 0, len(res.Analyses))
	for _, r := range res.Analyses {
		ar, err := wrap(r)
		if err != nil {
			return nil, fmt.Errorf("build report: %w", err)
		}
		analyses = append(analyses, ar)
	}
	return &Report{
		Task:       task,
		SystemName: systemName,
		Dataset:    dataset,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Level:      res.Level,
		N:          res.N,
		Overall:    res.Overall,
		Analyses:   analyses,
	}, nil
}

// WriteJSON emits the report as indented JSON with stable key order.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Save writes the report to a file.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	defer f.Close()
	if err := r.WriteJSON(f); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

// Load reads a report back from a JSON file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("load report %s: %w", path, err)
	}
	for _, ar := range r.Analyses {
		if _, err := ar.Result(); err != nil {
			return nil, fmt.Errorf("load report %s: %w", path, err)
		}
	}
	return &r, nil
}

// MetricNames lists the overall metrics in stable order.
func (r *Report) MetricNames() []string {
	names := make([]string, 0, len(r.Overall))
	for name := range r.Overall {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateText renders the report as plain TSV-style blocks: the overall
// results followed by each analysis.
func (r *Report) GenerateText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "overall results of %s on %s (%d samples)\n", r.SystemName, r.Dataset, r.N)
	b.WriteString("metric\tvalue\n")
	for _, name := range r.MetricNames() {
		fmt.Fprintf(&b, "%s\t%.4f\n", name, r.Overall[name].Score)
	}
	b.WriteString("\n")

	for _, ar := range r.Analyses {
		res, err := ar.Result()
		if err != nil {
			continue
		}
		b.WriteString(res.GenerateText())
	}
	return b.String()
}
