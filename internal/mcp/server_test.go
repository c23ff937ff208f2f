package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"interpreteval/internal/report"
	"interpreteval/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(Options{
		OutputDir: filepath.Join(t.TempDir(), "output"),
		Alpha:     0,
		Store:     store.NewMemStore(),
	})
}

func analyzeFixture(t *testing.T, srv *Server, systemName string) analyzeSystemOutput {
	t.Helper()
	dir := t.TempDir()
	dataset := writeFile(t, dir, "reviews.tsv",
		"loved it\tpositive\nhated it\tnegative\nmeh\tpositive\nfine\tnegative\n")
	output := writeFile(t, dir, systemName+".txt",
		"positive\npositive\npositive\nnegative\n")

	_, out, err := srv.handleAnalyzeSystem(context.Background(), nil, analyzeSystemInput{
		Task:         "text-classification",
		DatasetPath:  dataset,
		SystemOutput: output,
	})
	if err != nil {
		t.Fatalf("analyze_system: %v", err)
	}
	return out
}

func TestListTasks(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.handleListTasks(context.Background(), nil, listTasksInput{})
	if err != nil {
		t.Fatalf("list_tasks: %v", err)
	}
	if len(out.Tasks) != 8 {
		t.Fatalf("expected 8 tasks, got %d", len(out.Tasks))
	}

	var found bool
	for _, task := range out.Tasks {
		if task.Task == "text-classification" {
			found = true
			if len(task.Metrics) == 0 {
				t.Error("text-classification has no default metrics")
			}
			if len(task.DatasetTypes) == 0 {
				t.Error("text-classification has no dataset file types")
			}
		}
	}
	if !found {
		t.Error("text-classification missing from task list")
	}
}

func TestAnalyzeSystem_RecordsRun(t *testing.T) {
	srv := newTestServer(t)
	out := analyzeFixture(t, srv, "my-system")

	if out.RunID == 0 {
		t.Error("expected a non-zero run ID")
	}
	if out.SystemName != "my-system" {
		t.Errorf("system name = %q, want my-system", out.SystemName)
	}
	if out.NSamples != 4 {
		t.Errorf("n_samples = %d, want 4", out.NSamples)
	}
	if got := out.Overall["Accuracy"]; got != 0.75 {
		t.Errorf("accuracy = %v, want 0.75", got)
	}
	if _, err := os.Stat(out.ReportPath); err != nil {
		t.Errorf("report file not written: %v", err)
	}

	run, err := srv.opts.Store.GetRun(out.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Task != "text-classification" {
		t.Errorf("stored task = %q", run.Task)
	}
	if run.Scores["Accuracy"] != 0.75 {
		t.Errorf("stored accuracy = %v, want 0.75", run.Scores["Accuracy"])
	}
}

func TestAnalyzeSystem_BadTask(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.handleAnalyzeSystem(context.Background(), nil, analyzeSystemInput{
		Task:         "no-such-task",
		SystemOutput: "out.txt",
	})
	if err == nil {
		t.Fatal("expected error for unknown task")
	}
	if !strings.Contains(err.Error(), "no-such-task") {
		t.Errorf("error does not name the task: %v", err)
	}
}

func TestGetReport(t *testing.T) {
	srv := newTestServer(t)
	analyzed := analyzeFixture(t, srv, "my-system")

	_, out, err := srv.handleGetReport(context.Background(), nil, getReportInput{RunID: analyzed.RunID})
	if err != nil {
		t.Fatalf("get_report: %v", err)
	}
	if out.Run.ID != analyzed.RunID {
		t.Errorf("run ID = %d, want %d", out.Run.ID, analyzed.RunID)
	}
	if !strings.Contains(out.Text, "my-system") {
		t.Errorf("report text does not mention the system:\n%s", out.Text)
	}
	if !strings.Contains(out.Report, `"Accuracy"`) {
		t.Error("report JSON missing Accuracy")
	}
}

func TestGetReport_NotFound(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.handleGetReport(context.Background(), nil, getReportInput{RunID: 404})
	if err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListRuns(t *testing.T) {
	srv := newTestServer(t)
	analyzeFixture(t, srv, "first")
	analyzeFixture(t, srv, "second")

	_, out, err := srv.handleListRuns(context.Background(), nil, listRunsInput{})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if len(out.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(out.Runs))
	}
	// Newest first.
	if out.Runs[0].SystemName != "second" || out.Runs[1].SystemName != "first" {
		t.Errorf("unexpected order: %q then %q", out.Runs[0].SystemName, out.Runs[1].SystemName)
	}
}

func TestWatchParent_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	WatchParent(ctx, cancel)
	cancel()

	// The watchdog goroutine must exit without panicking.
	time.Sleep(50 * time.Millisecond)
}

func TestAnalyzeSystem_AlphaOverride(t *testing.T) {
	srv := NewServer(Options{
		OutputDir: filepath.Join(t.TempDir(), "output"),
		Alpha:     0.05,
		Store:     store.NewMemStore(),
	})

	dir := t.TempDir()
	dataset := writeFile(t, dir, "reviews.tsv",
		"loved it\tpositive\nhated it\tnegative\nmeh\tpositive\nfine\tnegative\n")
	output := writeFile(t, dir, "sys.txt", "positive\npositive\npositive\nnegative\n")

	analyze := func(alpha *float64) *report.Report {
		t.Helper()
		_, out, err := srv.handleAnalyzeSystem(context.Background(), nil, analyzeSystemInput{
			Task:         "text-classification",
			DatasetPath:  dataset,
			SystemOutput: output,
			Alpha:        alpha,
		})
		if err != nil {
			t.Fatalf("analyze_system: %v", err)
		}
		r, err := report.Load(out.ReportPath)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}

	// Omitted alpha uses the server default and produces intervals.
	if r := analyze(nil); r.Overall["Accuracy"].CI == nil {
		t.Error("expected a confidence interval with the server default alpha")
	}

	// An explicit 0 disables them.
	zero := 0.0
	if r := analyze(&zero); r.Overall["Accuracy"].CI != nil {
		t.Error("expected no confidence interval with alpha 0")
	}
}
