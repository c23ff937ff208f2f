package processor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskTextClassification,
		Description:  "single-text classification (e.g. sentiment)",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV, loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeText, loader.FileTypeTSV},
		VocabField:   "text",
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{
					loader.StringField("text"), loader.StringField("true_label"),
				})
			},
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadText(r, "predicted_label")
			},
			loader.FileTypeTSV: readLabelConfidenceTSV,
		},
		New: newTextClassification,
	})

	register(Spec{
		Task:         TaskTextPairClassification,
		Description:  "two-text classification (e.g. natural language inference)",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV, loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeText, loader.FileTypeTSV},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{
					loader.StringField("text1"), loader.StringField("text2"),
					loader.StringField("true_label"),
				})
			},
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadText(r, "predicted_label")
			},
			loader.FileTypeTSV: readLabelConfidenceTSV,
		},
		New: newTextPairClassification,
	})

	register(Spec{
		Task:         TaskTabularClassification,
		Description:  "classification over tabular records",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV, loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeText, loader.FileTypeTSV},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{loader.StringField("true_label")})
			},
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadText(r, "predicted_label")
			},
			loader.FileTypeTSV: readLabelConfidenceTSV,
		},
		New: newTabularClassification,
	})
}

// readLabelConfidenceTSV reads system outputs with a predicted label and an
// optional confidence column.
func readLabelConfidenceTSV(r io.Reader) ([]loader.Sample, error) {
	var samples []loader.Sample
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	row := 0
	for sc.Scan() {
		row++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		s := loader.Sample{"predicted_label": cols[0]}
		switch len(cols) {
		case 1:
		case 2:
			conf, err := strconv.ParseFloat(strings.TrimSpace(cols[1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid confidence %q", row, cols[1])
			}
			s["confidence"] = conf
		default:
			return nil, fmt.Errorf("row %d: expected 1 or 2 columns, got %d", row, len(cols))
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return samples, nil
}

// classificationMetrics are shared by all classification tasks.
func classificationMetrics() []metric.Config {
	return []metric.Config{
		metric.AccuracyConfig{},
		metric.F1Config{Average: metric.AverageMicro},
		metric.F1Config{Average: metric.AverageMacro},
	}
}

// labelFeatures declares the features every classification task carries.
func labelFeatures() map[string]analysis.FeatureType {
	return map[string]analysis.FeatureType{
		"true_label":      {Dtype: analysis.TypeString, Description: "gold label"},
		"predicted_label": {Dtype: analysis.TypeString, Description: "predicted label"},
		"confidence":      {Dtype: analysis.TypeFloat, Description: "confidence of the prediction"},
	}
}

// labelAnalyses are the analyses every classification task runs: accuracy
// per gold label, the confusion matrix, and calibration when a confidence
// column is present.
func labelAnalyses() []analysis.Analysis {
	return []analysis.Analysis{
		analysis.BucketAnalysis{
			Desc:    "performance by gold label",
			Level:   "example",
			Feature: "true_label",
			Method:  analysis.MethodDiscrete,
			// Enough for every label of the usual benchmarks.
			NumBuckets: 15,
		},
		analysis.ComboCountAnalysis{
			Desc:     "confusion matrix",
			Level:    "example",
			Features: []string{"true_label", "predicted_label"},
		},
		analysis.CalibrationAnalysis{
			Desc:    "confidence calibration",
			Level:   "example",
			Feature: "confidence",
		},
	}
}

func newTextClassification() *Processor {
	features := labelFeatures()
	features["text_length"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "text length in tokens"}
	features["text_chars"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "text length in characters"}
	features["num_oov"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "out-of-vocabulary tokens", RequireTrainingSet: true}
	features["freq_rank"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "mean training-frequency rank of tokens", RequireTrainingSet: true}

	analyses := labelAnalyses()
	analyses = append(analyses,
		analysis.BucketAnalysis{Desc: "performance by text length", Level: "example", Feature: "text_length"},
		analysis.BucketAnalysis{Desc: "performance by OOV count", Level: "example", Feature: "num_oov"},
		analysis.BucketAnalysis{Desc: "performance by word rarity", Level: "example", Feature: "freq_rank"},
	)

	return &Processor{
		task:     TaskTextClassification,
		level:    analysis.Level{Name: "example", Features: features},
		metrics:  classificationMetrics(),
		analyses: analyses,
		truth:    stringPair("true_label"),
		pred:     stringPair("predicted_label"),
		copied:   []string{"true_label", "predicted_label"},
		derived: map[string]featureFunc{
			"text_length": tokenCount("text"),
			"text_chars":  charCount("text"),
			"num_oov":     oovCount("text"),
			"freq_rank":   freqRank("text"),
			"confidence":  copyFloat("confidence"),
		},
	}
}

func newTextPairClassification() *Processor {
	features := labelFeatures()
	features["text1_length"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "first text length in tokens"}
	features["text2_length"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "second text length in tokens"}
	features["length_ratio"] = analysis.FeatureType{Dtype: analysis.TypeFloat, Description: "first to second text length ratio"}

	analyses := labelAnalyses()
	analyses = append(analyses,
		analysis.BucketAnalysis{Desc: "performance by first text length", Level: "example", Feature: "text1_length"},
		analysis.BucketAnalysis{Desc: "performance by second text length", Level: "example", Feature: "text2_length"},
		analysis.BucketAnalysis{Desc: "performance by length ratio", Level: "example", Feature: "length_ratio"},
	)

	return &Processor{
		task:     TaskTextPairClassification,
		level:    analysis.Level{Name: "example", Features: features},
		metrics:  classificationMetrics(),
		analyses: analyses,
		truth:    stringPair("true_label"),
		pred:     stringPair("predicted_label"),
		copied:   []string{"true_label", "predicted_label"},
		derived: map[string]featureFunc{
			"text1_length": tokenCount("text1"),
			"text2_length": tokenCount("text2"),
			"length_ratio": tokenRatio("text1", "text2"),
			"confidence":   copyFloat("confidence"),
		},
	}
}

func newTabularClassification() *Processor {
	return &Processor{
		task:     TaskTabularClassification,
		level:    analysis.Level{Name: "example", Features: labelFeatures()},
		metrics:  classificationMetrics(),
		analyses: labelAnalyses(),
		truth:    stringPair("true_label"),
		pred:     stringPair("predicted_label"),
		copied:   []string{"true_label", "predicted_label"},
		derived: map[string]featureFunc{
			"confidence": copyFloat("confidence"),
		},
	}
}
