package report

import (
	"interpreteval/internal/loader"
)

// ToSamples converts the buckets of a finished report back into samples,
// one per bucket and metric, so that reports themselves can be aggregated
// and re-analyzed. Each sample carries the analysis name, the bucket label,
// the bucket size and the bucket's score.
func (r *Report) ToSamples() []loader.Sample {
	var samples []loader.Sample
	for _, ar := range r.Analyses {
		if ar.Type != "bucket" || ar.Bucket == nil {
			continue
		}
		for _, bp := range ar.Bucket.Buckets {
			for _, mn := range bucketMetricNames(ar.Bucket.Buckets) {
				res, ok := bp.Results[mn]
				if !ok {
					continue
				}
				samples = append(samples, loader.Sample{
					"system_name":  r.SystemName,
					"feature_name": ar.Bucket.Name,
					"bucket_name":  bucketLabel(bp),
					"bucket_size":  float64(bp.N),
					"metric_name":  mn,
					"score":        res.Score,
				})
			}
		}
	}
	return samples
}
