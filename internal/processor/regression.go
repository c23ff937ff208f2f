package processor

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"interpreteval/internal/analysis"
	"interpreteval/internal/loader"
	"interpreteval/internal/metric"
)

func init() {
	register(Spec{
		Task:         TaskTabularRegression,
		Description:  "regression over tabular records",
		DatasetTypes: []loader.FileType{loader.FileTypeTSV, loader.FileTypeJSON},
		OutputTypes:  []loader.FileType{loader.FileTypeText, loader.FileTypeTSV},
		datasetReaders: map[loader.FileType]readFunc{
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{loader.FloatField("true_value")})
			},
			loader.FileTypeJSON: loader.ReadJSON,
		},
		outputReaders: map[loader.FileType]readFunc{
			loader.FileTypeText: readFloatLines("predicted_value"),
			loader.FileTypeTSV: func(r io.Reader) ([]loader.Sample, error) {
				return loader.ReadTSV(r, []loader.Field{loader.FloatField("predicted_value")})
			},
		},
		New: newTabularRegression,
	})
}

// readFloatLines reads one number per line into the given field.
func readFloatLines(name string) readFunc {
	return func(r io.Reader) ([]loader.Sample, error) {
		var samples []loader.Sample
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		row := 0
		for sc.Scan() {
			row++
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid number %q", row, line)
			}
			samples = append(samples, loader.Sample{name: v})
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return samples, nil
	}
}

func newTabularRegression() *Processor {
	return &Processor{
		task: TaskTabularRegression,
		level: analysis.Level{Name: "example", Features: map[string]analysis.FeatureType{
			"true_value":      {Dtype: analysis.TypeFloat, Description: "gold value"},
			"predicted_value": {Dtype: analysis.TypeFloat, Description: "predicted value"},
			"absolute_error":  {Dtype: analysis.TypeFloat, Description: "absolute prediction error"},
		}},
		metrics: []metric.Config{
			metric.RMSEConfig{},
			metric.AbsoluteErrorConfig{},
		},
		analyses: []analysis.Analysis{
			analysis.BucketAnalysis{Desc: "performance by gold value", Level: "example", Feature: "true_value"},
			analysis.BucketAnalysis{Desc: "performance by predicted value", Level: "example", Feature: "predicted_value"},
		},
		truth:  floatPair("true_value"),
		pred:   floatPair("predicted_value"),
		copied: []string{"true_value", "predicted_value"},
		derived: map[string]featureFunc{
			"absolute_error": absoluteError("true_value", "predicted_value"),
		},
	}
}

// absoluteError computes |truth - prediction| as a per-sample feature.
func absoluteError(truthField, predField string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		t, terr := sampleFloat(s, truthField)
		p, perr := sampleFloat(s, predField)
		if terr != nil || perr != nil {
			return nil, false
		}
		return math.Abs(t - p), true
	}
}
