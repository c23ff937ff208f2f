package processor

import (
	"io"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskSummarization,
		Description:  "conditional text generation (summarization)",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV, loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeText},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{
					loader.StringField("source"), loader.StringField("reference"),
				})
			},
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadText(r, "hypothesis")
			},
		},
		New: newSummarization,
	})
}

func newSummarization() *Processor {
	return &Processor{
		task: TaskSummarization,
		level: analysis.Level{Name: "example", Features: map[string]analysis.FeatureType{
			"source_length":     {Dtype: analysis.TypeFloat, Description: "source length in tokens"},
			"reference_length":  {Dtype: analysis.TypeFloat, Description: "reference summary length in tokens"},
			"hypothesis_length": {Dtype: analysis.TypeFloat, Description: "generated summary length in tokens"},
			"compression":       {Dtype: analysis.TypeFloat, Description: "source to reference token ratio"},
		}},
		// Token-overlap F1 of hypothesis against reference. A full ROUGE
		// implementation is out of scope here.
		metrics: []metric.Config{
			metric.F1QAConfig{},
		},
		analyses: []analysis.Analysis{
			analysis.BucketAnalysis{Desc: "performance by source length", Level: "example", Feature: "source_length"},
			analysis.BucketAnalysis{Desc: "performance by reference length", Level: "example", Feature: "reference_length"},
			analysis.BucketAnalysis{Desc: "performance by compression ratio", Level: "example", Feature: "compression"},
		},
		truth: stringPair("reference"),
		pred:  stringPair("hypothesis"),
		derived: map[string]featureFunc{
			"source_length":     tokenCount("source"),
			"reference_length":  tokenCount("reference"),
			"hypothesis_length": tokenCount("hypothesis"),
			"compression":       tokenRatio("source", "reference"),
		},
	}
}
