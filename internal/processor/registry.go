package processor

import (
	"fmt"
	"io"
	"sort"

	"interpreteval/internal/loader"
)

// Task names a supported evaluation task.
type Task string

const (
	TaskTextClassification     Task = "text-classification"
	TaskTextPairClassification Task = "text-pair-classification"
	TaskTabularClassification  Task = "tabular-classification"
	TaskTabularRegression      Task = "tabular-regression"
	TaskQAExtractive           Task = "qa-extractive"
	TaskNER                    Task = "named-entity-recognition"
	TaskSummarization          Task = "summarization"
	TaskMetaEvalWMTDA          Task = "meta-evaluation-wmt-da"
)

// readFunc loads samples from one open file.
type readFunc func(io.Reader) ([]loader.Sample, error)

// Spec describes a task: accepted file types on each side (first entry is
// the default), the matching readers, and the processor constructor.
type Spec struct {
	Task        Task
	Description string

	DatasetTypes []loader.FileType
	OutputTypes  []loader.FileType

	// VocabField names the sample field the training vocabulary is built
	// from, for tasks whose features need one. Text fields are tokenized;
	// token-slice fields are used as is.
	VocabField string

	datasetReaders map[loader.FileType]readFunc
	outputReaders  map[loader.FileType]readFunc

	New func() *Processor
}

// LoadDataset reads a dataset file. An empty file type selects the task
// default.
func (sp Spec) LoadDataset(path string, ft loader.FileType) ([]loader.Sample, error) {
	return sp.load(path, ft, sp.DatasetTypes, sp.datasetReaders, "dataset")
}

// LoadOutput reads a system-output file. An empty file type selects the
// task default.
func (sp Spec) LoadOutput(path string, ft loader.FileType) ([]loader.Sample, error) {
	return sp.load(path, ft, sp.OutputTypes, sp.outputReaders, "system output")
}

func (sp Spec) load(path string, ft loader.FileType, accepted []loader.FileType, readers map[loader.FileType]readFunc, side string) ([]loader.Sample, error) {
	if ft == "" {
		ft = accepted[0]
	}
	read, ok := readers[ft]
	if !ok {
		return nil, fmt.Errorf("task %s: %s file type %q not supported (accepted: %v)", sp.Task, side, ft, accepted)
	}
	return loader.ReadFile(path, read)
}

var registry = map[Task]Spec{}

func register(sp Spec) {
	if _, dup := registry[sp.Task]; dup {
		panic(fmt.Sprintf("duplicate task %s", sp.Task))
	}
	registry[sp.Task] = sp
}

// Get resolves a task name.
func Get(task string) (Spec, error) {
	sp, ok := registry[Task(task)]
	if !ok {
		names := make([]string, 0, len(registry))
		for t := range registry {
			names = append(names, string(t))
		}
		sort.Strings(names)
		return Spec{}, fmt.Errorf("unknown task %q (supported: %v)", task, names)
	}
	return sp, nil
}

// List returns all task specs sorted by name.
func List() []Spec {
	specs := make([]Spec, 0, len(registry))
	for _, sp := range registry {
		specs = append(specs, sp)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Task < specs[j].Task })
	return specs
}
