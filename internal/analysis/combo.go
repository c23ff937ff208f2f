package analysis

import (
	"fmt"
	"sort"
	"strings"

	"interpreteval/internal/metric"
)

// ComboCountAnalysis counts occurrences of feature-value combinations, the
// generalization of a confusion matrix.
type ComboCountAnalysis struct {
	Desc        string
	Level       string
	Features    []string
	SampleLimit int
}

func (a ComboCountAnalysis) Description() string { return a.Desc }

func (a ComboCountAnalysis) Perform(cases []Case, _ map[string]metric.Metric, _ map[string]*metric.Stats, _ float64) (Result, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("combo analysis: no cases to analyze")
	}
	for _, f := range a.Features {
		if _, ok := cases[0].Features[f]; !ok {
			return nil, fmt.Errorf("combo analysis: feature %q not found", f)
		}
	}
	limit := a.SampleLimit
	if limit == 0 {
		limit = DefaultSampleLimit
	}

	comboIDs := map[string][]int{}
	for _, c := range cases {
		vals := make([]string, len(a.Features))
		for i, f := range a.Features {
			vals[i] = toLabel(c.Features[f])
		}
		key := strings.Join(vals, "\x00")
		comboIDs[key] = append(comboIDs[key], c.SampleID)
	}

	occs := make([]ComboOccurrence, 0, len(comboIDs))
	for key, ids := range comboIDs {
		occs = append(occs, ComboOccurrence{
			Values:    strings.Split(key, "\x00"),
			Count:     len(ids),
			SampleIDs: subsample(ids, limit),
		})
	}
	sort.Slice(occs, func(i, j int) bool {
		a, b := occs[i], occs[j]
		for k := range a.Values {
			if a.Values[k] != b.Values[k] {
				return a.Values[k] < b.Values[k]
			}
		}
		return a.Count < b.Count
	})

	return &ComboCountAnalysisResult{
		Name:        "combo(" + strings.Join(a.Features, ",") + ")",
		Level:       a.Level,
		Features:    a.Features,
		Occurrences: occs,
	}, nil
}

// ComboOccurrence is one observed feature-value combination.
type ComboOccurrence struct {
	Values    []string `json:"features"`
	Count     int      `json:"sample_count"`
	SampleIDs []int    `json:"sample_ids"`
}

// ComboCountAnalysisResult is the outcome of a ComboCountAnalysis.
type ComboCountAnalysisResult struct {
	Name        string            `json:"name"`
	Level       string            `json:"level"`
	Features    []string          `json:"features"`
	Occurrences []ComboOccurrence `json:"combo_occurrences"`
}

func (r *ComboCountAnalysisResult) AnalysisName() string { return r.Name }
func (r *ComboCountAnalysisResult) LevelName() string    { return r.Level }

func (r *ComboCountAnalysisResult) GenerateText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "feature combos for %s\n", strings.Join(r.Features, ", "))
	b.WriteString(strings.Join(append(append([]string{}, r.Features...), "#"), "\t"))
	b.WriteString("\n")
	for _, occ := range r.Occurrences {
		fmt.Fprintf(&b, "%s\t%d\n", strings.Join(occ.Values, "\t"), occ.Count)
	}
	b.WriteString("\n")
	return b.String()
}
