package report

import (
	"fmt"
	"strings"

	"interpreteval/internal/format"
)

// MetricDelta is one metric compared between two systems.
type MetricDelta struct {
	Metric   string  `json:"metric"`
	Base     float64 `json:"base"`
	Contrast float64 `json:"contrast"`
	Delta    float64 `json:"delta"`
}

// BucketDelta is one bucket of one analysis compared between two systems.
type BucketDelta struct {
	Analysis string  `json:"analysis"`
	Bucket   string  `json:"bucket"`
	Metric   string  `json:"metric"`
	N        int     `json:"n_samples"`
	Base     float64 `json:"base"`
	Contrast float64 `json:"contrast"`
	Delta    float64 `json:"delta"`
}

// Comparison holds the pairwise deltas of two systems evaluated on the
// same dataset.
type Comparison struct {
	Task     string        `json:"task"`
	Base     string        `json:"base_system"`
	Contrast string        `json:"contrast_system"`
	Overall  []MetricDelta `json:"overall"`
	Buckets  []BucketDelta `json:"buckets"`
}

// Compare computes overall and per-bucket metric deltas between two
// reports. Both must come from the same task and sample count.
func Compare(base, contrast *Report) (*Comparison, error) {
	if base.Task != contrast.Task {
		return nil, fmt.Errorf("compare: task mismatch: %s vs %s", base.Task, contrast.Task)
	}
	if base.N != contrast.N {
		return nil, fmt.Errorf("compare: sample count mismatch: %d vs %d", base.N, contrast.N)
	}

	cmp := &Comparison{Task: base.Task, Base: base.SystemName, Contrast: contrast.SystemName}
	for _, name := range base.MetricNames() {
		cres, ok := contrast.Overall[name]
		if !ok {
			continue
		}
		bres := base.Overall[name]
		cmp.Overall = append(cmp.Overall, MetricDelta{
			Metric:   name,
			Base:     bres.Score,
			Contrast: cres.Score,
			Delta:    cres.Score - bres.Score,
		})
	}

	contrastScores := indexBucketScores(contrast)
	for _, ar := range base.Analyses {
		if ar.Type != "bucket" || ar.Bucket == nil {
			continue
		}
		for _, bp := range ar.Bucket.Buckets {
			label := bucketLabel(bp)
			for _, mn := range bucketMetricNames(ar.Bucket.Buckets) {
				cscore, ok := contrastScores[bucketKey(ar.Bucket.Name, label, mn)]
				if !ok {
					continue
				}
				cmp.Buckets = append(cmp.Buckets, BucketDelta{
					Analysis: ar.Bucket.Name,
					Bucket:   label,
					Metric:   mn,
					N:        bp.N,
					Base:     bp.Results[mn].Score,
					Contrast: cscore,
					Delta:    cscore - bp.Results[mn].Score,
				})
			}
		}
	}
	return cmp, nil
}

func bucketKey(analysisName, bucketLabel, metricName string) string {
	return analysisName + "\x00" + bucketLabel + "\x00" + metricName
}

// indexBucketScores flattens a report's bucket scores for lookup by
// analysis, bucket label and metric.
func indexBucketScores(r *Report) map[string]float64 {
	out := map[string]float64{}
	for _, ar := range r.Analyses {
		if ar.Type != "bucket" || ar.Bucket == nil {
			continue
		}
		for _, bp := range ar.Bucket.Buckets {
			for mn, res := range bp.Results {
				out[bucketKey(ar.Bucket.Name, bucketLabel(bp), mn)] = res.Score
			}
		}
	}
	return out
}

// RenderTables renders the comparison as tables.
func (c *Comparison) RenderTables(mode format.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s\n\n", c.Base, c.Contrast)

	t := format.NewTable(mode)
	t.Header("Metric", c.Base, c.Contrast, "Delta")
	for _, d := range c.Overall {
		t.Row(d.Metric, format.FmtScore(d.Base), format.FmtScore(d.Contrast), format.FmtDelta(d.Delta))
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(c.Buckets) > 0 {
		b.WriteString("\nper-bucket deltas\n")
		bt := format.NewTable(mode)
		bt.Header("Analysis", "Bucket", "Metric", "Samples", c.Base, c.Contrast, "Delta")
		for _, d := range c.Buckets {
			bt.Row(d.Analysis, d.Bucket, d.Metric, format.FmtCount(d.N),
				format.FmtScore(d.Base), format.FmtScore(d.Contrast), format.FmtDelta(d.Delta))
		}
		b.WriteString(bt.String())
		b.WriteString("\n")
	}
	return b.String()
}
