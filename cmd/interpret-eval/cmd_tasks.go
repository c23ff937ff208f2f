package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"interpreteval/internal/format"
	"interpreteval/internal/processor"
)

var tasksFlags struct {
	formatName string
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List supported tasks with their default metrics and file types",
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().StringVar(&tasksFlags.formatName, "format", "ascii", "Table format: ascii or markdown")
}

func runTasks(cmd *cobra.Command, _ []string) error {
	mode, ok := format.ParseMode(tasksFlags.formatName)
	if !ok {
		return fmt.Errorf("unknown format %q (want ascii or markdown)", tasksFlags.formatName)
	}

	tbl := format.NewTable(mode)
	tbl.Header("Task", "Default metrics", "Dataset types", "Output types")
	for _, sp := range processor.List() {
		tbl.Row(
			string(sp.Task),
			strings.Join(sp.New().MetricNames(), ", "),
			joinFileTypes(sp.DatasetTypes),
			joinFileTypes(sp.OutputTypes),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
	return nil
}

func joinFileTypes[T ~string](fts []T) string {
	parts := make([]string, len(fts))
	for i, ft := range fts {
		parts[i] = string(ft)
	}
	return strings.Join(parts, ", ")
}
