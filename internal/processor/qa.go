package processor

import (
	"fmt"
	"io"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskQAExtractive,
		Description:  "extractive question answering (SQuAD-style)",
		DatasetTypes: []loader.FileType{loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeJSON, loader.FileTypeText},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeJSON: loader.ReadJSON,
			loader.FileTypeText: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadText(r, "predicted_answer")
			},
		},
		New: newQAExtractive,
	})
}

func newQAExtractive() *Processor {
	return &Processor{
		task: TaskQAExtractive,
		level: analysis.Level{Name: "example", Features: map[string]analysis.FeatureType{
			"context_length":  {Dtype: analysis.TypeFloat, Description: "context length in tokens"},
			"question_length": {Dtype: analysis.TypeFloat, Description: "question length in tokens"},
			"answer_length":   {Dtype: analysis.TypeFloat, Description: "gold answer length in tokens"},
		}},
		metrics: []metric.Config{
			metric.ExactMatchQAConfig{},
			metric.F1QAConfig{},
		},
		analyses: []analysis.Analysis{
			analysis.BucketAnalysis{Desc: "performance by context length", Level: "example", Feature: "context_length"},
			analysis.BucketAnalysis{Desc: "performance by question length", Level: "example", Feature: "question_length"},
			analysis.BucketAnalysis{Desc: "performance by answer length", Level: "example", Feature: "answer_length"},
		},
		truth: func(s loader.Sample) (any, error) {
			v, ok := s["answers"]
			if !ok {
				return nil, fmt.Errorf("field %q missing", "answers")
			}
			return v, nil
		},
		pred: stringPair("predicted_answer"),
		derived: map[string]featureFunc{
			"context_length":  tokenCount("context"),
			"question_length": tokenCount("question"),
			"answer_length":   answerLength("answers"),
		},
	}
}

// answerLength counts tokens of the first gold answer.
func answerLength(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		v, ok := s[field]
		if !ok {
			return nil, false
		}
		switch x := v.(type) {
		case string:
			return float64(len(Tokenize(x))), true
		case []string:
			if len(x) == 0 {
				return nil, false
			}
			return float64(len(Tokenize(x[0]))), true
		case []any:
			if len(x) == 0 {
				return nil, false
			}
			first, ok := x[0].(string)
			if !ok {
				return nil, false
			}
			return float64(len(Tokenize(first))), true
		}
		return nil, false
	}
}
