// Package analysis implements the fine-grained breakdown layer: cases,
// bucketing strategies, and the analyses that re-evaluate metrics per
// bucket from sample-level statistics.
package analysis

// Case is one unit of analysis (an example) with its computed features.
// SampleID is the row index into the metric statistics for the same run.
type Case struct {
	SampleID int            `json:"sample_id"`
	Features map[string]any `json:"features"`
}

// Interval is a closed numeric bucket range.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// CaseCollection is one bucket of cases: either a numeric interval
// (continuous/fixed bucketing) or a named group (discrete bucketing).
type CaseCollection struct {
	SampleIDs []int
	Interval  *Interval
	Name      string
}

// FeaturePair carries a sample and its numeric feature value into
// continuous or fixed bucketing.
type FeaturePair struct {
	SampleID int
	Value    float64
}

// LabelPair carries a sample and its categorical feature value into
// discrete bucketing.
type LabelPair struct {
	SampleID int
	Value    string
}
