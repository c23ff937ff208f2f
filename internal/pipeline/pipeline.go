// Package pipeline glues the stages together: resolve the dataset, load
// and merge files, process, and assemble the report. Both the CLI and the
// MCP server drive analyses through it.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"interpreteval/internal/hub"
	"interpreteval/internal/loader"
	"interpreteval/internal/logging"
	"interpreteval/internal/processor"
	"interpreteval/internal/report"
)

var log = logging.New("pipeline")

// Options select what to analyze. Exactly one of DatasetPath or Dataset
// must be set.
type Options struct {
	Task string

	// custom local dataset
	DatasetPath     string
	DatasetFileType string

	// hub dataset
	Dataset    string
	SubDataset string

	SystemOutput   string
	OutputFileType string
	SystemName     string

	// training split for vocabulary features; optional
	TrainingPath string

	Alpha float64

	HubURL   string
	CacheDir string
}

// Run executes one full analysis and returns the report.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	sp, err := processor.Get(opts.Task)
	if err != nil {
		return nil, err
	}

	datasetPath := opts.DatasetPath
	datasetType := loader.FileType(opts.DatasetFileType)
	ds := report.Dataset{Path: opts.DatasetPath}

	switch {
	case opts.DatasetPath != "" && opts.Dataset != "":
		return nil, fmt.Errorf("give either a custom dataset path or a hub dataset name, not both")
	case opts.DatasetPath == "" && opts.Dataset == "":
		return nil, fmt.Errorf("a dataset is required: --custom-dataset-paths or --dataset")
	case opts.Dataset != "":
		client, err := hub.New(opts.HubURL, hubOptions(opts)...)
		if err != nil {
			return nil, err
		}
		info, err := client.Info(ctx, opts.Dataset, opts.SubDataset)
		if err != nil {
			return nil, fmt.Errorf("resolve dataset %s: %w", opts.Dataset, err)
		}
		if info.Task != "" && info.Task != opts.Task {
			return nil, fmt.Errorf("dataset %s is for task %s, not %s", opts.Dataset, info.Task, opts.Task)
		}
		datasetPath, err = client.Fetch(ctx, info, "test")
		if err != nil {
			return nil, fmt.Errorf("fetch dataset %s: %w", opts.Dataset, err)
		}
		datasetType = loader.FileType(info.FileType)
		ds = report.Dataset{Name: info.Name, SubDataset: info.SubDataset}
	}

	log.Info("loading dataset", "task", opts.Task, "dataset", ds.String())
	dataset, err := sp.LoadDataset(datasetPath, datasetType)
	if err != nil {
		return nil, err
	}
	output, err := sp.LoadOutput(opts.SystemOutput, loader.FileType(opts.OutputFileType))
	if err != nil {
		return nil, err
	}
	samples, err := loader.Merge(dataset, output)
	if err != nil {
		return nil, fmt.Errorf("merge %s with %s: %w", datasetPath, opts.SystemOutput, err)
	}

	proc := sp.New()
	if opts.TrainingPath != "" {
		if sp.VocabField == "" {
			return nil, fmt.Errorf("task %s has no vocabulary features; a training set is not applicable", opts.Task)
		}
		training, err := sp.LoadDataset(opts.TrainingPath, datasetType)
		if err != nil {
			return nil, fmt.Errorf("load training set: %w", err)
		}
		proc.SetTraining(processor.TrainingFromSamples(training, sp.VocabField))
	}

	log.Info("processing", "task", opts.Task, "samples", len(samples))
	res, err := proc.Process(samples, opts.Alpha)
	if err != nil {
		return nil, err
	}

	name := opts.SystemName
	if name == "" {
		name = systemNameFromPath(opts.SystemOutput)
	}
	return report.New(opts.Task, name, ds, res)
}

func hubOptions(opts Options) []hub.Option {
	var hopts []hub.Option
	if opts.CacheDir != "" {
		hopts = append(hopts, hub.WithCacheDir(opts.CacheDir))
	}
	hopts = append(hopts, hub.WithLogger(logging.New("hub")))
	return hopts
}

func systemNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
