// Package mcp exposes the analysis operations as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"interpreteval/internal/loader"
	"interpreteval/internal/logging"
	"interpreteval/internal/pipeline"
	"interpreteval/internal/processor"
	"interpreteval/internal/report"
	"interpreteval/internal/store"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options configure the server's pipeline defaults.
type Options struct {
	OutputDir string
	Alpha     float64
	HubURL    string
	CacheDir  string
	Store     store.Store
}

// Server wraps the MCP SDK server and the run history store.
type Server struct {
	MCPServer *sdkmcp.Server

	opts Options

	mu sync.Mutex // serializes analyze_system runs
}

// NewServer creates an MCP server with the analysis tools. A nil store
// falls back to an in-memory run history.
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemStore()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	s := &Server{opts: opts}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "interpret-eval", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "List the supported evaluation tasks with their default metrics and accepted file types.",
	}, s.handleListTasks)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_system",
		Description: "Run the full analysis pipeline on a system output and record the run. Returns the run ID and overall scores.",
	}, s.handleAnalyzeSystem)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_report",
		Description: "Return a recorded run's full report as plain text and JSON.",
	}, s.handleGetReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recorded analysis runs, newest first.",
	}, s.handleListRuns)
}

// --- Tool input/output types ---

type taskInfo struct {
	Task         string   `json:"task"`
	Description  string   `json:"description"`
	Metrics      []string `json:"default_metrics"`
	DatasetTypes []string `json:"dataset_file_types"`
	OutputTypes  []string `json:"output_file_types"`
}

type listTasksInput struct{}

type listTasksOutput struct {
	Tasks []taskInfo `json:"tasks"`
}

type analyzeSystemInput struct {
	Task            string   `json:"task" jsonschema:"task name from list_tasks"`
	DatasetPath     string   `json:"dataset_path,omitempty" jsonschema:"path to a custom dataset file"`
	DatasetFileType string   `json:"dataset_file_type,omitempty" jsonschema:"dataset encoding (tsv, json, conll, text); default per task"`
	Dataset         string   `json:"dataset,omitempty" jsonschema:"hub dataset name (alternative to dataset_path)"`
	SubDataset      string   `json:"sub_dataset,omitempty" jsonschema:"hub sub-dataset name"`
	SystemOutput    string   `json:"system_output" jsonschema:"path to the system output file"`
	OutputFileType  string   `json:"output_file_type,omitempty" jsonschema:"system output encoding; default per task"`
	SystemName      string   `json:"system_name,omitempty" jsonschema:"display name; default derived from the output file name"`
	Alpha           *float64 `json:"alpha,omitempty" jsonschema:"significance level for confidence intervals (default: server setting; 0 disables)"`
}

type analyzeSystemOutput struct {
	RunID      int64              `json:"run_id"`
	SystemName string             `json:"system_name"`
	ReportPath string             `json:"report_path"`
	NSamples   int                `json:"n_samples"`
	Overall    map[string]float64 `json:"overall"`
}

type getReportInput struct {
	RunID int64 `json:"run_id" jsonschema:"run ID from analyze_system or list_runs"`
}

type getReportOutput struct {
	Run    runInfo `json:"run"`
	Text   string  `json:"text"`
	Report string  `json:"report_json"`
}

type runInfo struct {
	ID         int64              `json:"id"`
	Task       string             `json:"task"`
	SystemName string             `json:"system_name"`
	Dataset    string             `json:"dataset"`
	NSamples   int                `json:"n_samples"`
	Scores     map[string]float64 `json:"scores"`
	CreatedAt  string             `json:"created_at"`
}

type listRunsInput struct{}

type listRunsOutput struct {
	Runs []runInfo `json:"runs"`
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *sdkmcp.CallToolRequest, _ listTasksInput) (*sdkmcp.CallToolResult, listTasksOutput, error) {
	var out listTasksOutput
	for _, sp := range processor.List() {
		out.Tasks = append(out.Tasks, taskInfo{
			Task:         string(sp.Task),
			Description:  sp.Description,
			Metrics:      sp.New().MetricNames(),
			DatasetTypes: fileTypeNames(sp.DatasetTypes),
			OutputTypes:  fileTypeNames(sp.OutputTypes),
		})
	}
	return nil, out, nil
}

func (s *Server) handleAnalyzeSystem(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeSystemInput) (*sdkmcp.CallToolResult, analyzeSystemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.New("mcp")

	// Omitted alpha falls back to the server default; an explicit 0
	// disables confidence intervals.
	alpha := s.opts.Alpha
	if input.Alpha != nil {
		alpha = *input.Alpha
	}
	r, err := pipeline.Run(ctx, pipeline.Options{
		Task:            input.Task,
		DatasetPath:     input.DatasetPath,
		DatasetFileType: input.DatasetFileType,
		Dataset:         input.Dataset,
		SubDataset:      input.SubDataset,
		SystemOutput:    input.SystemOutput,
		OutputFileType:  input.OutputFileType,
		SystemName:      input.SystemName,
		Alpha:           alpha,
		HubURL:          s.opts.HubURL,
		CacheDir:        s.opts.CacheDir,
	})
	if err != nil {
		return nil, analyzeSystemOutput{}, fmt.Errorf("analyze_system: %w", err)
	}

	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return nil, analyzeSystemOutput{}, fmt.Errorf("analyze_system: create output dir: %w", err)
	}
	reportPath := filepath.Join(s.opts.OutputDir, fmt.Sprintf("report-%s.json", r.SystemName))
	if err := r.Save(reportPath); err != nil {
		return nil, analyzeSystemOutput{}, fmt.Errorf("analyze_system: %w", err)
	}

	scores := make(map[string]float64, len(r.Overall))
	for name, res := range r.Overall {
		scores[name] = res.Score
	}
	runID, err := s.opts.Store.SaveRun(&store.Run{
		Task:       r.Task,
		SystemName: r.SystemName,
		Dataset:    r.Dataset.String(),
		NSamples:   r.N,
		Scores:     scores,
		ReportPath: reportPath,
		CreatedAt:  r.CreatedAt,
	})
	if err != nil {
		return nil, analyzeSystemOutput{}, fmt.Errorf("analyze_system: record run: %w", err)
	}

	logger.Info("run recorded", "run_id", runID, "system", r.SystemName, "task", r.Task)
	return nil, analyzeSystemOutput{
		RunID:      runID,
		SystemName: r.SystemName,
		ReportPath: reportPath,
		NSamples:   r.N,
		Overall:    scores,
	}, nil
}

func (s *Server) handleGetReport(_ context.Context, _ *sdkmcp.CallToolRequest, input getReportInput) (*sdkmcp.CallToolResult, getReportOutput, error) {
	run, err := s.opts.Store.GetRun(input.RunID)
	if err != nil {
		return nil, getReportOutput{}, fmt.Errorf("get_report: %w", err)
	}
	r, err := report.Load(run.ReportPath)
	if err != nil {
		return nil, getReportOutput{}, fmt.Errorf("get_report: %w", err)
	}
	raw, err := os.ReadFile(run.ReportPath)
	if err != nil {
		return nil, getReportOutput{}, fmt.Errorf("get_report: %w", err)
	}
	return nil, getReportOutput{
		Run:    toRunInfo(run),
		Text:   r.GenerateText(),
		Report: string(raw),
	}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, _ listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	runs, err := s.opts.Store.ListRuns()
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	var out listRunsOutput
	for _, run := range runs {
		out.Runs = append(out.Runs, toRunInfo(run))
	}
	return nil, out, nil
}

func toRunInfo(run *store.Run) runInfo {
	return runInfo{
		ID:         run.ID,
		Task:       run.Task,
		SystemName: run.SystemName,
		Dataset:    run.Dataset,
		NSamples:   run.NSamples,
		Scores:     run.Scores,
		CreatedAt:  run.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func fileTypeNames(fts []loader.FileType) []string {
	out := make([]string, len(fts))
	for i, ft := range fts {
		out[i] = string(ft)
	}
	return out
}
