package processor

import (
	"io"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskNER,
		Description:  "named entity recognition (BIO sequence labeling)",
		DatasetTypes: []loader.FileType{loader.FileTypeCoNLL},
		OutputTypes:  []loader.FileType{loader.FileTypeCoNLL},
		VocabField:   "tokens",
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeCoNLL: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadCoNLL(r, []string{"true_tags"})
			},
		},
		outputReaders: map[loader.FileType]readFunc{
			// token, gold tag, predicted tag per line
			loader.FileTypeCoNLL: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadCoNLL(r, []string{"true_tags", "predicted_tags"})
			},
		},
		New: newNER,
	})
}

func newNER() *Processor {
	return &Processor{
		task: TaskNER,
		level: analysis.Level{Name: "example", Features: map[string]analysis.FeatureType{
			"sentence_length": {Dtype: analysis.TypeFloat, Description: "sentence length in tokens"},
			"num_entities":    {Dtype: analysis.TypeFloat, Description: "gold entity spans in the sentence"},
			"entity_density":  {Dtype: analysis.TypeFloat, Description: "gold spans per token"},
			"num_oov":         {Dtype: analysis.TypeFloat, Description: "out-of-vocabulary tokens", RequireTrainingSet: true},
		}},
		metrics: []metric.Config{
			metric.SeqF1Config{Average: metric.AverageMicro},
			metric.SeqF1Config{Average: metric.AverageMacro},
		},
		analyses: []analysis.Analysis{
			analysis.BucketAnalysis{Desc: "performance by sentence length", Level: "example", Feature: "sentence_length"},
			analysis.BucketAnalysis{Desc: "performance by entity count", Level: "example", Feature: "num_entities"},
			analysis.BucketAnalysis{Desc: "performance by OOV count", Level: "example", Feature: "num_oov"},
		},
		truth: stringsPair("true_tags"),
		pred:  stringsPair("predicted_tags"),
		derived: map[string]featureFunc{
			"sentence_length": seqLength("tokens"),
			"num_entities":    spanCount("true_tags"),
			"entity_density":  entityDensity("true_tags", "tokens"),
			"num_oov":         seqOOVCount("tokens"),
		},
	}
}

// entityDensity divides gold span count by sentence length.
func entityDensity(tagsField, tokensField string) featureFunc {
	spans := spanCount(tagsField)
	return func(s loader.Sample, tr *TrainingStats) (any, bool) {
		toks, err := sampleStrings(s, tokensField)
		if err != nil || len(toks) == 0 {
			return nil, false
		}
		n, ok := spans(s, tr)
		if !ok {
			return nil, false
		}
		return n.(float64) / float64(len(toks)), true
	}
}

// seqOOVCount counts sequence tokens unseen in the training vocabulary.
func seqOOVCount(tokensField string) featureFunc {
	return func(s loader.Sample, tr *TrainingStats) (any, bool) {
		if tr == nil {
			return nil, false
		}
		toks, err := sampleStrings(s, tokensField)
		if err != nil {
			return nil, false
		}
		n := 0.0
		for _, tok := range toks {
			if !tr.Contains(tok) {
				n++
			}
		}
		return n, true
	}
}
