package report

import (
	"fmt"
	"sort"
	"strings"

	"interpreteval/internal/analysis"
	"interpreteval/internal/format"
)

// RenderTables renders the report as tables in the given mode: the overall
// results followed by one table per analysis.
func (r *Report) RenderTables(mode format.Mode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s on %s, %d samples\n\n", r.SystemName, r.Dataset, r.N)

	t := format.NewTable(mode)
	t.Header("Metric", "Score", "95% CI")
	t.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
	for _, name := range r.MetricNames() {
		res := r.Overall[name]
		ci := "-"
		if res.CI != nil {
			ci = format.FmtInterval(res.CI.Lo, res.CI.Hi)
		}
		t.Row(name, format.FmtScore(res.Score), ci)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, ar := range r.Analyses {
		res, err := ar.Result()
		if err != nil {
			continue
		}
		b.WriteString("\n")
		b.WriteString(renderAnalysis(res, mode))
	}
	return b.String()
}

func renderAnalysis(res analysis.Result, mode format.Mode) string {
	switch x := res.(type) {
	case *analysis.BucketAnalysisResult:
		return renderBuckets(x.Name, x.Buckets, mode)
	case *analysis.CalibrationAnalysisResult:
		var b strings.Builder
		b.WriteString(renderBuckets(x.Name, x.Buckets, mode))
		fmt.Fprintf(&b, "ECE %s, MCE %s\n", format.FmtScore(x.ECE), format.FmtScore(x.MCE))
		return b.String()
	case *analysis.ComboCountAnalysisResult:
		var b strings.Builder
		fmt.Fprintf(&b, "combos of %s\n", strings.Join(x.Features, ", "))
		t := format.NewTable(mode)
		header := make([]string, 0, len(x.Features)+1)
		header = append(header, x.Features...)
		t.Header(append(header, "Count")...)
		for _, occ := range x.Occurrences {
			row := make([]any, 0, len(occ.Values)+1)
			for _, v := range occ.Values {
				row = append(row, v)
			}
			t.Row(append(row, format.FmtCount(occ.Count))...)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
		return b.String()
	}
	return res.GenerateText()
}

func renderBuckets(name string, buckets []analysis.BucketPerformance, mode format.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "buckets of %s\n", name)

	metricNames := bucketMetricNames(buckets)
	t := format.NewTable(mode)
	header := append([]string{"Bucket", "Samples"}, metricNames...)
	t.Header(header...)
	for _, bp := range buckets {
		row := []any{bucketLabel(bp), format.FmtCount(bp.N)}
		for _, mn := range metricNames {
			row = append(row, format.FmtScore(bp.Results[mn].Score))
		}
		t.Row(row...)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func bucketLabel(bp analysis.BucketPerformance) string {
	if bp.Interval != nil {
		return format.FmtInterval(bp.Interval.Lo, bp.Interval.Hi)
	}
	return bp.Name
}

func bucketMetricNames(buckets []analysis.BucketPerformance) []string {
	if len(buckets) == 0 {
		return nil
	}
	names := make([]string, 0, len(buckets[0].Results))
	for name := range buckets[0].Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Markdown renders the full report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis report: %s\n\n", r.SystemName)
	fmt.Fprintf(&b, "- Task: %s\n", r.Task)
	fmt.Fprintf(&b, "- Dataset: %s\n", r.Dataset)
	fmt.Fprintf(&b, "- Samples: %d\n", r.N)
	fmt.Fprintf(&b, "- Created: %s\n\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Overall results\n\n")
	t := format.NewTable(format.Markdown)
	t.Header("Metric", "Score", "95% CI")
	for _, name := range r.MetricNames() {
		res := r.Overall[name]
		ci := "-"
		if res.CI != nil {
			ci = format.FmtInterval(res.CI.Lo, res.CI.Hi)
		}
		t.Row(name, format.FmtScore(res.Score), ci)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, ar := range r.Analyses {
		res, err := ar.Result()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", res.AnalysisName())
		b.WriteString(renderAnalysis(res, format.Markdown))
	}
	return b.String()
}
