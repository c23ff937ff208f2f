package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"interpreteval/internal/format"
	"interpreteval/internal/report"
	"interpreteval/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse the local run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded analysis runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run and its report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs. Run 'interpret-eval analyze' first.")
		return nil
	}

	tbl := format.NewTable(format.ASCII)
	tbl.Header("ID", "Task", "System", "Dataset", "Samples", "Scores", "Created")
	for _, r := range runs {
		tbl.Row(r.ID, r.Task, r.SystemName, r.Dataset, r.NSamples,
			formatScores(r.Scores), r.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run ID must be a number, got %q", args[0])
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Run:     #%d\n", run.ID)
	fmt.Fprintf(stdout, "Task:    %s\n", run.Task)
	fmt.Fprintf(stdout, "System:  %s\n", run.SystemName)
	fmt.Fprintf(stdout, "Dataset: %s\n", run.Dataset)
	fmt.Fprintf(stdout, "Samples: %d\n", run.NSamples)
	fmt.Fprintf(stdout, "Created: %s\n\n", run.CreatedAt.Format("2006-01-02 15:04:05"))

	r, err := report.Load(run.ReportPath)
	if err != nil {
		fmt.Fprintf(stdout, "Scores:  %s\n", formatScores(run.Scores))
		fmt.Fprintf(stdout, "(report %s not readable: %v)\n", run.ReportPath, err)
		return nil
	}
	fmt.Fprintln(stdout, r.RenderTables(format.ASCII))
	return nil
}

func formatScores(scores map[string]float64) string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%s", name, format.FmtScore(scores[name]))
	}
	return strings.Join(parts, " ")
}
