package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"interpreteval/internal/format"
	"interpreteval/internal/pipeline"
	"interpreteval/internal/report"
	"interpreteval/internal/store"
)

var analyzeFlags struct {
	task            string
	systemOutputs   []string
	systemNames     []string
	datasetPath     string
	datasetFileType string
	dataset         string
	subDataset      string
	outputFileType  string
	reportFileType  string
	trainingPath    string
	outputDir       string
	alpha           float64
	markdownReport  bool
	noHistory       bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis pipeline on one or more system outputs",
	Long: `Analyze system outputs against a dataset and write per-system reports
with overall metrics, bucket breakdowns and confidence intervals.

The dataset is either a local file (--custom-dataset-paths) or a named
dataset fetched from the hub (--dataset, optionally --sub-dataset).

Passing two --system-outputs additionally produces a pairwise
comparison of the systems.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.task, "task", "", "Task name (see 'interpret-eval tasks')")
	f.StringSliceVar(&analyzeFlags.systemOutputs, "system-outputs", nil, "System output file(s); two files trigger pairwise comparison")
	f.StringSliceVar(&analyzeFlags.systemNames, "system-names", nil, "Display names matching --system-outputs (default: file names)")
	f.StringVar(&analyzeFlags.datasetPath, "custom-dataset-paths", "", "Local dataset file")
	f.StringVar(&analyzeFlags.datasetFileType, "custom-dataset-file-type", "", "Dataset encoding: tsv, json, conll or text (default per task)")
	f.StringVar(&analyzeFlags.dataset, "dataset", "", "Hub dataset name")
	f.StringVar(&analyzeFlags.subDataset, "sub-dataset", "", "Hub sub-dataset name")
	f.StringVar(&analyzeFlags.outputFileType, "output-file-type", "", "System output encoding (default per task)")
	f.StringVar(&analyzeFlags.reportFileType, "report-file-type", "json", "Report artifact format: json, or text for an additional plain-text report")
	f.StringVar(&analyzeFlags.trainingPath, "training-set", "", "Training split for vocabulary features (same encoding as the dataset)")
	f.StringVar(&analyzeFlags.outputDir, "output-dir", "", "Report output directory (default from config)")
	f.Float64Var(&analyzeFlags.alpha, "alpha", -1, "Significance level for confidence intervals (default from config; 0 disables)")
	f.BoolVar(&analyzeFlags.markdownReport, "report", false, "Also write a Markdown report (.md) alongside each JSON report")
	f.BoolVar(&analyzeFlags.noHistory, "no-history", false, "Do not record the runs in the local history store")
}

// analyzeOptions validates the flags and expands them into one pipeline
// run per system output.
func analyzeOptions() ([]pipeline.Options, error) {
	f := &analyzeFlags
	if f.task == "" {
		return nil, fmt.Errorf("--task is required (see 'interpret-eval tasks')")
	}
	if len(f.systemOutputs) == 0 {
		return nil, fmt.Errorf("at least one --system-outputs file is required")
	}
	if len(f.systemNames) > 0 && len(f.systemNames) != len(f.systemOutputs) {
		return nil, fmt.Errorf("--system-names count (%d) does not match --system-outputs count (%d)",
			len(f.systemNames), len(f.systemOutputs))
	}
	if f.reportFileType != "json" && f.reportFileType != "text" {
		return nil, fmt.Errorf("--report-file-type must be json or text, got %q", f.reportFileType)
	}

	alpha := f.alpha
	if alpha < 0 {
		alpha = cfg.Alpha
	}

	opts := make([]pipeline.Options, len(f.systemOutputs))
	for i, out := range f.systemOutputs {
		name := ""
		if i < len(f.systemNames) {
			name = f.systemNames[i]
		}
		opts[i] = pipeline.Options{
			Task:            f.task,
			DatasetPath:     f.datasetPath,
			DatasetFileType: f.datasetFileType,
			Dataset:         f.dataset,
			SubDataset:      f.subDataset,
			SystemOutput:    out,
			OutputFileType:  f.outputFileType,
			SystemName:      name,
			TrainingPath:    f.trainingPath,
			Alpha:           alpha,
			HubURL:          cfg.HubURL,
			CacheDir:        cfg.CacheDir,
		}
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	opts, err := analyzeOptions()
	if err != nil {
		return err
	}

	outputDir := analyzeFlags.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	reports := make([]*report.Report, len(opts))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, o := range opts {
		g.Go(func() error {
			r, err := pipeline.Run(ctx, o)
			if err != nil {
				return fmt.Errorf("%s: %w", o.SystemOutput, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	for _, r := range reports {
		path, err := writeReport(r, outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, r.RenderTables(format.ASCII))
		fmt.Fprintf(stdout, "Report: %s\n\n", path)
		if !analyzeFlags.noHistory {
			if err := recordRun(r, path); err != nil {
				return err
			}
		}
	}

	if len(reports) == 2 {
		cmp, err := report.Compare(reports[0], reports[1])
		if err != nil {
			return fmt.Errorf("compare systems: %w", err)
		}
		fmt.Fprintln(stdout, cmp.RenderTables(format.ASCII))
		cmpPath := filepath.Join(outputDir,
			fmt.Sprintf("compare-%s-vs-%s.json", cmp.Base, cmp.Contrast))
		if err := writeJSONFile(cmpPath, cmp); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Comparison: %s\n", cmpPath)
	}
	return nil
}

// writeReport persists one report to the output directory. The JSON
// report is always written; --report-file-type text and --report add a
// plain text and a Markdown rendering next to it.
func writeReport(r *report.Report, outputDir string) (string, error) {
	base := filepath.Join(outputDir, "report-"+r.SystemName)
	jsonPath := base + ".json"
	if err := r.Save(jsonPath); err != nil {
		return "", err
	}
	if analyzeFlags.reportFileType == "text" {
		if err := os.WriteFile(base+".txt", []byte(r.GenerateText()), 0644); err != nil {
			return "", fmt.Errorf("write text report: %w", err)
		}
	}
	if analyzeFlags.markdownReport {
		if err := os.WriteFile(base+".md", []byte(r.Markdown()), 0644); err != nil {
			return "", fmt.Errorf("write markdown report: %w", err)
		}
	}
	return jsonPath, nil
}

func recordRun(r *report.Report, reportPath string) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	scores := make(map[string]float64, len(r.Overall))
	for name, res := range r.Overall {
		scores[name] = res.Score
	}
	_, err = st.SaveRun(&store.Run{
		Task:       r.Task,
		SystemName: r.SystemName,
		Dataset:    r.Dataset.String(),
		NSamples:   r.N,
		Scores:     scores,
		ReportPath: reportPath,
		CreatedAt:  r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
