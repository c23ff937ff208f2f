package processor

import (
	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskMetaEvalWMTDA,
		Description:  "segment-level meta-evaluation of MT metrics (WMT direct assessment)",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV},
		OutputTypes:  []loader.FileType{loader.FileTypeText, loader.FileTypeTSV},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: loader.ReadMetaEvalTSV,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: readFloatLines("auto_score"),
			loader.FileTypeTSV:  readFloatLines("auto_score"),
		},
		New: newMetaEvalWMTDA,
	})
}

func newMetaEvalWMTDA() *Processor {
	return &Processor{
		task: TaskMetaEvalWMTDA,
		level: analysis.Level{Name: "example", Features: map[string]analysis.FeatureType{
			"sys_name":       {Dtype: analysis.TypeString, Description: "translation system"},
			"test_set":       {Dtype: analysis.TypeString, Description: "WMT test set"},
			"source_length":  {Dtype: analysis.TypeFloat, Description: "source segment length in tokens"},
			"manual_score_z": {Dtype: analysis.TypeFloat, Description: "standardized human score"},
		}},
		metrics: []metric.Config{
			metric.PearsonConfig{},
			metric.SpearmanConfig{},
		},
		analyses: []analysis.Analysis{
			analysis.BucketAnalysis{
				Desc:       "correlation by translation system",
				Level:      "example",
				Feature:    "sys_name",
				Method:     analysis.MethodDiscrete,
				NumBuckets: 30,
			},
			analysis.BucketAnalysis{Desc: "correlation by source length", Level: "example", Feature: "source_length"},
			analysis.BucketAnalysis{Desc: "correlation by human score", Level: "example", Feature: "manual_score_z"},
		},
		truth:  floatPair("manual_score_z"),
		pred:   floatPair("auto_score"),
		copied: []string{"sys_name", "test_set", "manual_score_z"},
		derived: map[string]featureFunc{
			"source_length": tokenCount("source"),
		},
	}
}
