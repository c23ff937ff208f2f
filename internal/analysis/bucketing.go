package analysis

import (
	"sort"
)

// ContinuousBuckets splits samples into up to n buckets of roughly equal
// population over a numeric feature. Samples sharing a value always land in
// the same bucket, so fewer than n buckets may be produced when the value
// distribution is coarse. Bucket intervals are closed [min, max] over the
// values they contain.
func ContinuousBuckets(pairs []FeaturePair, n int) []CaseCollection {
	if len(pairs) == 0 || n <= 0 {
		return nil
	}

	sorted := make([]FeaturePair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Value < sorted[b].Value })

	target := (len(sorted) + n - 1) / n

	var buckets []CaseCollection
	i := 0
	for i < len(sorted) {
		j := i + target
		if j > len(sorted) {
			j = len(sorted)
		}
		// Never split a run of equal values across buckets.
		for j < len(sorted) && sorted[j].Value == sorted[j-1].Value {
			j++
		}
		ids := make([]int, 0, j-i)
		for k := i; k < j; k++ {
			ids = append(ids, sorted[k].SampleID)
		}
		buckets = append(buckets, CaseCollection{
			SampleIDs: ids,
			Interval:  &Interval{Lo: sorted[i].Value, Hi: sorted[j-1].Value},
		})
		i = j
	}
	return buckets
}

// DiscreteBuckets groups samples by categorical value, ordered by
// descending size (ties by name). At most maxBuckets groups are kept and
// groups smaller than minCount are dropped; maxBuckets <= 0 keeps all.
func DiscreteBuckets(pairs []LabelPair, maxBuckets, minCount int) []CaseCollection {
	groups := map[string][]int{}
	for _, p := range pairs {
		groups[p.Value] = append(groups[p.Value], p.SampleID)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		if len(groups[name]) >= minCount {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(a, b int) bool {
		if len(groups[names[a]]) != len(groups[names[b]]) {
			return len(groups[names[a]]) > len(groups[names[b]])
		}
		return names[a] < names[b]
	})

	if maxBuckets > 0 && len(names) > maxBuckets {
		names = names[:maxBuckets]
	}

	buckets := make([]CaseCollection, len(names))
	for i, name := range names {
		buckets[i] = CaseCollection{Name: name, SampleIDs: groups[name]}
	}
	return buckets
}

// FixedBuckets assigns samples to caller-supplied intervals. Each value
// goes to the first interval with Lo <= v < Hi; the final interval is
// closed on both ends. Intervals with no samples are kept (empty bucket),
// matching the behavior needed for calibration histograms.
func FixedBuckets(pairs []FeaturePair, intervals []Interval) []CaseCollection {
	buckets := make([]CaseCollection, len(intervals))
	for i := range intervals {
		iv := intervals[i]
		buckets[i] = CaseCollection{Interval: &iv}
	}

	for _, p := range pairs {
		for i, iv := range intervals {
			last := i == len(intervals)-1
			if p.Value >= iv.Lo && (p.Value < iv.Hi || (last && p.Value <= iv.Hi)) {
				buckets[i].SampleIDs = append(buckets[i].SampleIDs, p.SampleID)
				break
			}
		}
	}
	return buckets
}

// UnitIntervals divides [0, 1] into n equal fixed intervals.
func UnitIntervals(n int) []Interval {
	out := make([]Interval, n)
	for i := 0; i < n; i++ {
		hi := float64(i+1) / float64(n)
		if i == n-1 {
			hi = 1.0
		}
		out[i] = Interval{Lo: float64(i) / float64(n), Hi: hi}
	}
	return out
}
